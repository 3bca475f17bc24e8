package simulation

import "math"

// float64ToInt64Bits/int64BitsToFloat round-trip a float64 through the
// atomic.Int64 CurrentTime uses, grounded on the teacher's atomic.Int32/
// atomic.Value fields in system/framework/base.go: an atomic primitive
// sized for the underlying type rather than a mutex for a single
// observer-read field.
func float64ToInt64Bits(f float64) int64 { return int64(math.Float64bits(f)) }

func int64BitsToFloat(b int64) float64 { return math.Float64frombits(uint64(b)) }
