package speech

import (
	"fmt"

	"github.com/gen2brain/malgo"
)

// micSource captures linear16 mono audio from the default input device
// and exposes it as a channel of frames.
type micSource struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	frames chan []byte
}

func newMicSource(sampleRate int) (*micSource, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio capture context: %w", err)
	}

	m := &micSource{
		ctx:    ctx,
		frames: make(chan []byte, 64),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			frame := make([]byte, len(input))
			copy(frame, input)
			select {
			case m.frames <- frame:
			default:
				// Consumer fell behind; dropping a frame beats blocking
				// the capture thread.
			}
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		return nil, fmt.Errorf("initializing microphone: %w", err)
	}
	m.device = device

	if err := device.Start(); err != nil {
		device.Uninit()
		_ = ctx.Uninit()
		return nil, fmt.Errorf("starting microphone: %w", err)
	}

	return m, nil
}

// Frames returns the captured audio frames.
func (m *micSource) Frames() <-chan []byte {
	return m.frames
}

// Close stops capture and releases the device.
func (m *micSource) Close() {
	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
	}
	if m.ctx != nil {
		_ = m.ctx.Uninit()
	}
}

// probeMic checks that an audio capture context can be created at all.
// Used once at adapter construction as the capability check.
func probeMic() error {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("audio capture unavailable: %w", err)
	}
	_ = ctx.Uninit()
	return nil
}
