package device

import "testing"

func TestGPIOPinLifecycle(t *testing.T) {
	pin := GPIO(4)
	if pin.Mode() != ModeRead {
		t.Fatalf("fresh gpio pin should read, got %v", pin.Mode())
	}
	if pin.Pullup() != PullupFloating {
		t.Fatalf("fresh gpio pin should float, got %v", pin.Pullup())
	}
	if pin.Value() {
		t.Fatal("fresh gpio pin should be low")
	}
	if err := pin.SetMode(ModeWrite); err != nil {
		t.Fatal(err)
	}
	if err := pin.SetValue(true); err != nil {
		t.Fatal(err)
	}
	if err := pin.SetPullup(PullupUp); err != nil {
		t.Fatal(err)
	}
	if pin.Mode() != ModeWrite || !pin.Value() || pin.Pullup() != PullupUp {
		t.Fatalf("pin state did not stick: %v %v %v", pin.Mode(), pin.Value(), pin.Pullup())
	}
	if err := pin.SetMode(Mode("listen")); err == nil {
		t.Fatal("invalid modes should be rejected")
	}
	if err := pin.SetPullup(Pullup("sideways")); err == nil {
		t.Fatal("invalid pullups should be rejected")
	}
}

func TestFixedPinsRejectWrites(t *testing.T) {
	for _, pin := range []*Pin{Power(1, 5.0), Ground(3)} {
		if err := pin.SetMode(ModeWrite); err == nil {
			t.Fatalf("pin %v should reject mode changes", pin.Number())
		}
		if err := pin.SetValue(true); err == nil {
			t.Fatalf("pin %v should reject value changes", pin.Number())
		}
		if err := pin.SetPullup(PullupUp); err == nil {
			t.Fatalf("pin %v should reject pullup changes", pin.Number())
		}
	}
	volts, ok := Power(1, 5.0).Volts()
	if !ok || volts != 5.0 {
		t.Fatalf("expected a 5V rail, got %v %v", volts, ok)
	}
	if _, ok := Ground(3).Volts(); ok {
		t.Fatal("ground pins have no voltage")
	}
}

func TestHub(t *testing.T) {
	hub := NewHub()
	hub.Load(2, MockBoard())
	hub.Load(1, MockBoard())
	ids := hub.List()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Fatalf("unexpected board list %v", ids)
	}
	if hub.Get(1) == nil {
		t.Fatal("board 1 should be loaded")
	}
	if hub.Get(9) != nil {
		t.Fatal("board 9 should not exist")
	}
}

func TestBoardPinLookup(t *testing.T) {
	board := MockBoard()
	pin, ok := board.Pin(4)
	if !ok || !pin.IsGPIO() {
		t.Fatal("pin 4 should be gpio")
	}
	if _, ok := board.Pin(42); ok {
		t.Fatal("pin 42 should not exist")
	}
}
