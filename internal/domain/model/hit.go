package model

import "time"

// Hit is one row of the counter table. Every successful /db request appends
// exactly one Hit before the count is reported.
type Hit struct {
	ID int64
	TS time.Time
}

// Count is the number of rows in the counter table.
type Count int64
