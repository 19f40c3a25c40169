// Package audio plays synthesized speech through the local output device.
// It owns a single output context and at most one active playback source.
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"go.uber.org/zap"
)

// Config holds playback parameters. Gemini TTS emits 16-bit mono PCM at
// 24 kHz, so those are the defaults.
type Config struct {
	SampleRate int
	Channels   int
}

func (c Config) withDefaults() Config {
	if c.SampleRate <= 0 {
		c.SampleRate = 24000
	}
	if c.Channels <= 0 {
		c.Channels = 1
	}
	return c
}

// Player decodes PCM byte buffers and plays them. At most one source is
// active at a time; starting a new playback preempts the old one.
type Player struct {
	cfg    Config
	logger *zap.Logger

	mu         sync.Mutex
	otoCtx     *oto.Context
	player     *oto.Player
	playing    bool
	generation int
}

// NewPlayer creates a player. The output device is acquired lazily on the
// first Play call, not here.
func NewPlayer(cfg Config, logger *zap.Logger) *Player {
	return &Player{
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

// Play decodes a raw PCM buffer and starts playback, stopping any source
// that is still active. Malformed buffers are logged and dropped; they
// never propagate as an error and the player stays idle.
func (p *Player) Play(pcm []byte) {
	if err := validatePCM(pcm); err != nil {
		p.logger.Warn("dropping malformed audio buffer", zap.Error(err))
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureContextLocked(); err != nil {
		p.logger.Warn("audio output unavailable", zap.Error(err))
		return
	}

	// The device may be suspended (previous teardown, OS policy); resume
	// before starting a new source.
	if err := p.otoCtx.Resume(); err != nil {
		p.logger.Warn("resuming audio context", zap.Error(err))
	}

	p.stopLocked()

	p.generation++
	gen := p.generation

	pl := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	pl.Play()
	p.player = pl
	p.playing = true

	p.logger.Debug("playback started",
		zap.Duration("duration", pcmDuration(len(pcm), p.cfg.SampleRate, p.cfg.Channels)),
	)

	go p.watch(pl, gen)
}

// watch waits for the source to drain and releases it. The generation
// counter keeps a finished watcher from clobbering a newer playback.
func (p *Player) watch(pl *oto.Player, gen int) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if pl.IsPlaying() {
			continue
		}

		p.mu.Lock()
		if p.generation == gen {
			p.playing = false
			p.player = nil
		}
		p.mu.Unlock()

		_ = pl.Close()
		return
	}
}

// Stop halts any in-progress playback immediately. Stopping an idle
// player is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	if p.player == nil {
		return
	}
	p.player.Pause()
	_ = p.player.Close()
	p.player = nil
	p.playing = false
	p.generation++
}

// IsPlaying reports whether a source is currently active.
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Close stops playback and suspends the output device. oto contexts
// cannot be destroyed; suspending releases the hardware.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if p.otoCtx != nil {
		if err := p.otoCtx.Suspend(); err != nil {
			p.logger.Warn("suspending audio context", zap.Error(err))
		}
	}
}

func (p *Player) ensureContextLocked() error {
	if p.otoCtx != nil {
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   p.cfg.SampleRate,
		ChannelCount: p.cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("opening audio context: %w", err)
	}
	<-ready

	p.otoCtx = ctx
	p.logger.Debug("audio context acquired",
		zap.Int("sample_rate", p.cfg.SampleRate),
		zap.Int("channels", p.cfg.Channels),
	)
	return nil
}
