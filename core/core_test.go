package core

import "testing"

func TestIDGeneratorMonotonicUnique(t *testing.T) {
	gen := NewIDGenerator()
	seen := make(map[int64]bool)
	var prev int64
	for i := 0; i < 100; i++ {
		id := gen.Next()
		if id <= prev {
			t.Fatalf("expected monotonically increasing ids, got %d after %d", id, prev)
		}
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
		prev = id
	}
}

func TestOffsetsInvalidatedOnTopologyChange(t *testing.T) {
	gen := NewIDGenerator()
	b := InitBase(gen, "x")
	b.SetOffsets(PowerFlowMode, ComponentOffsets{AlgOffset: 3, DiffOffset: 0, RootOffset: 0})

	off := b.Offsets(PowerFlowMode)
	if !off.Valid || off.AlgOffset != 3 {
		t.Fatalf("expected valid offsets with AlgOffset=3, got %+v", off)
	}

	b.InvalidateOffsets()
	off = b.Offsets(PowerFlowMode)
	if off.Valid {
		t.Fatalf("expected offsets invalidated after topology change")
	}
}

func TestOffsetsScopedPerSolverMode(t *testing.T) {
	gen := NewIDGenerator()
	b := InitBase(gen, "x")
	b.SetOffsets(PowerFlowMode, ComponentOffsets{AlgOffset: 1})
	b.SetOffsets(DynamicMode, ComponentOffsets{AlgOffset: 7})

	if got := b.Offsets(PowerFlowMode).AlgOffset; got != 1 {
		t.Fatalf("expected power-flow offset 1, got %d", got)
	}
	if got := b.Offsets(DynamicMode).AlgOffset; got != 7 {
		t.Fatalf("expected dynamic offset 7, got %d", got)
	}
}

func TestFlagSetRoundTrip(t *testing.T) {
	var fs FlagSet
	fs.Set(FlagEnabled, true)
	fs.Set(FlagConnected, true)

	if !fs.Get(FlagEnabled) || !fs.Get(FlagConnected) {
		t.Fatalf("expected both flags set")
	}
	if fs.Get(FlagHasRoots) {
		t.Fatalf("expected unset flag to read false")
	}

	fs.Set(FlagEnabled, false)
	if fs.Get(FlagEnabled) {
		t.Fatalf("expected flag cleared")
	}
}

func TestChangeCodeMaxOrdering(t *testing.T) {
	cases := []struct {
		a, b, want ChangeCode
	}{
		{NoChange, ParameterChange, ParameterChange},
		{StateChange, ParameterChange, StateChange},
		{JacobianChange, ExecutionFailure, ExecutionFailure},
		{NoChange, NoChange, NoChange},
	}
	for _, c := range cases {
		if got := Max(c.a, c.b); got != c.want {
			t.Fatalf("Max(%v,%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestDisconnectTransitionsLifecycleAndAlerts(t *testing.T) {
	gen := NewIDGenerator()
	b := InitBase(gen, "x")
	sink := &recordingSink{}
	b.SetAlertSink(sink)
	b.SetOffsets(PowerFlowMode, ComponentOffsets{AlgOffset: 1})

	b.Disconnect()

	if b.LifecycleState() != Disconnected {
		t.Fatalf("expected Disconnected lifecycle, got %v", b.LifecycleState())
	}
	if b.Flags().Get(FlagConnected) {
		t.Fatalf("expected connected flag cleared")
	}
	if b.Offsets(PowerFlowMode).Valid {
		t.Fatalf("expected offsets invalidated on disconnect")
	}
	if len(sink.codes) != 1 || sink.codes[0] != AlertJacCountChange {
		t.Fatalf("expected single JAC_COUNT_CHANGE alert, got %+v", sink.codes)
	}
}

type recordingSink struct {
	codes []Alert
}

func (r *recordingSink) Alert(source Parent, code Alert) {
	r.codes = append(r.codes, code)
}
