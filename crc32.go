package rombp

/*------------------------------------------------------------------
 *
 * Purpose:	Streaming IEEE CRC-32 (reflected polynomial 0xEDB88320,
 *		initial register 0, final XOR 0xFFFFFFFF) over the bytes
 *		a patch job writes to its output.
 *
 * Description:	hash/crc32's IEEE table is exactly this polynomial and
 *		reflection, the same one the BPS trailer format uses -
 *		see _examples/mgius-bps/bps.go, which reaches for
 *		crc32.ChecksumIEEE rather than a hand-rolled table.
 *
 *---------------------------------------------------------------*/

import "hash/crc32"

// CRCWriter accumulates a running CRC-32/IEEE over every byte written to
// it. The zero value is ready to use (Write falls back to the IEEE
// table); NewCRCWriter sets the table up front. The register starts at
// the "0" state, matching the spec's output_crc32 initial value.
type CRCWriter struct {
	table *crc32.Table
	crc   uint32
}

// NewCRCWriter returns a CRCWriter with the shared IEEE table.
func NewCRCWriter() *CRCWriter {
	return &CRCWriter{table: crc32.IEEETable}
}

// Write implements io.Writer, feeding p through the running CRC.
// Satisfies spec invariant I5: the CRC must only be updated by the
// output-writer path, so every byte is counted exactly once.
func (c *CRCWriter) Write(p []byte) (int, error) {
	if c.table == nil {
		c.table = crc32.IEEETable
	}

	c.crc = crc32.Update(c.crc, c.table, p)
	return len(p), nil
}

// Sum32 returns the finalized CRC-32 of everything written so far.
func (c *CRCWriter) Sum32() uint32 {
	return c.crc
}

// Reset clears the running CRC back to its initial state.
func (c *CRCWriter) Reset() {
	c.crc = 0
}
