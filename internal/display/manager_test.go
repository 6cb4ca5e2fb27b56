package display

import (
	"testing"

	"github.com/rvolkert/keydeck/internal/config"
	"github.com/rvolkert/keydeck/internal/hid"
	"github.com/rvolkert/keydeck/internal/logpanel"
	"github.com/rvolkert/keydeck/internal/press"
)

type fakeDevice struct {
	frames []*hid.DisplayFrame
}

func (d *fakeDevice) SendFrame(frame *hid.DisplayFrame) error {
	d.frames = append(d.frames, frame)
	return nil
}

func testDisplayConfig() config.DisplayConfig {
	return config.DisplayConfig{
		Enabled:          true,
		Width:            128,
		Height:           64,
		UpdateIntervalMs: 100,
		LogLines:         3,
	}
}

func TestManagerSendsInitialFrame(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(testDisplayConfig(), device, nil)

	m.update()

	if len(device.frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(device.frames))
	}
	if device.frames[0].Command != hid.DisplayCmdFullFrame {
		t.Errorf("Command = 0x%02X, want 0x%02X", device.frames[0].Command, hid.DisplayCmdFullFrame)
	}
}

func TestManagerSkipsUnchangedFrames(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(testDisplayConfig(), device, nil)

	m.update()
	m.update()
	m.update()

	if len(device.frames) != 1 {
		t.Errorf("sent %d frames for unchanged content, want 1", len(device.frames))
	}
}

func TestManagerRedrawsOnStatusChange(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(testDisplayConfig(), device, nil)

	m.update()
	m.SetStatus("running")
	m.update()
	m.SetStatus("running") // no change
	m.update()

	if len(device.frames) != 2 {
		t.Errorf("sent %d frames, want 2", len(device.frames))
	}
}

func TestManagerRedrawsOnPress(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(testDisplayConfig(), device, nil)

	m.update()
	m.NotePress(press.NewLongEvent(2))
	m.update()

	if len(device.frames) != 2 {
		t.Errorf("sent %d frames, want 2", len(device.frames))
	}
}

func TestManagerRedrawsOnNewLogLines(t *testing.T) {
	device := &fakeDevice{}
	logs := logpanel.New(10)
	m := NewManager(testDisplayConfig(), device, logs)

	m.update()
	logs.Write([]byte("serial port opened\n"))
	m.update()
	m.update()

	if len(device.frames) != 2 {
		t.Errorf("sent %d frames, want 2", len(device.frames))
	}
}

func TestManagerStopClearsPanel(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(testDisplayConfig(), device, nil)

	m.Stop()

	if len(device.frames) != 1 {
		t.Fatalf("sent %d frames, want 1", len(device.frames))
	}
	if device.frames[0].Command != hid.DisplayCmdClear {
		t.Errorf("Command = 0x%02X, want 0x%02X", device.frames[0].Command, hid.DisplayCmdClear)
	}
}

func TestManagerForceRefresh(t *testing.T) {
	device := &fakeDevice{}
	m := NewManager(testDisplayConfig(), device, nil)

	m.update()
	m.ForceRefresh()
	m.update()

	if len(device.frames) != 2 {
		t.Errorf("sent %d frames, want 2", len(device.frames))
	}
}
