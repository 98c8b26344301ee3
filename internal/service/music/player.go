package music

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kapu/cantina-go/internal/constants"
	"github.com/kapu/cantina-go/pkg/errors"
	"go.uber.org/zap"
)

type PlayerConfig struct {
	Command string
	Args    []string // "{track}" is replaced with Track
	Track   string
}

// ProcessPlayer loops a track through an external audio player until Stop.
type ProcessPlayer struct {
	cfg          PlayerConfig
	logger       *zap.Logger
	restartDelay time.Duration
	stopTimeout  time.Duration

	mu      sync.Mutex
	loaded  bool
	command string
	cancel  context.CancelFunc
	done    chan struct{}

	starts atomic.Int32
}

func NewProcessPlayer(cfg PlayerConfig, logger *zap.Logger) *ProcessPlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProcessPlayer{
		cfg:          cfg,
		logger:       logger,
		restartDelay: constants.MusicConfig.RestartDelay,
		stopTimeout:  constants.MusicConfig.StopTimeout,
	}
}

// Load checks that both the track and the player binary exist.
func (p *ProcessPlayer) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewPlaybackError("load", err)
	}
	if p.cfg.Track == "" {
		return errors.NewPlaybackError("load", stderrors.New("no track configured"))
	}
	if _, err := os.Stat(p.cfg.Track); err != nil {
		return errors.NewPlaybackError("load", err)
	}
	path, err := exec.LookPath(p.cfg.Command)
	if err != nil {
		return errors.NewPlaybackError("load", err)
	}

	p.mu.Lock()
	p.loaded = true
	p.command = path
	p.mu.Unlock()

	p.logger.Debug("Music track loaded",
		zap.String("track", p.cfg.Track),
		zap.String("player", path),
	)
	return nil
}

// Play starts the loop. It does nothing before Load or while already playing.
func (p *ProcessPlayer) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.NewPlaybackError("play", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.loaded {
		p.logger.Debug("Play requested before load, ignoring")
		return nil
	}
	if p.cancel != nil {
		return nil
	}

	// Playback outlives the caller's context; only Stop ends it.
	loopCtx, cancel := context.WithCancel(context.Background())
	cmd, err := p.start(loopCtx, p.command)
	if err != nil {
		cancel()
		return errors.NewPlaybackError("play", err)
	}

	done := make(chan struct{})
	p.cancel = cancel
	p.done = done
	go p.loop(loopCtx, p.command, cmd, done)

	p.logger.Info("Music playback started", zap.String("track", p.cfg.Track))
	return nil
}

// Stop ends playback and waits for the player process to exit.
func (p *ProcessPlayer) Stop(ctx context.Context) error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	timer := time.NewTimer(p.stopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		p.logger.Info("Music playback stopped")
		return nil
	case <-ctx.Done():
		return errors.NewPlaybackError("stop", ctx.Err())
	case <-timer.C:
		return errors.NewPlaybackError("stop", fmt.Errorf("player did not exit within %s", p.stopTimeout))
	}
}

// IsPlaying reports whether the loop is running.
func (p *ProcessPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *ProcessPlayer) loop(ctx context.Context, command string, cmd *exec.Cmd, done chan struct{}) {
	defer close(done)

	for {
		err := cmd.Wait()
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			p.logger.Warn("Music player exited with error", zap.Error(err))
		}

		timer := time.NewTimer(p.restartDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		cmd, err = p.start(ctx, command)
		if err != nil {
			p.logger.Error("Failed to restart music player", zap.Error(err))
			p.release(done)
			return
		}
	}
}

// release clears the playing state if it still belongs to the loop that owns done.
func (p *ProcessPlayer) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done != done {
		return
	}
	p.cancel()
	p.cancel, p.done = nil, nil
}

func (p *ProcessPlayer) start(ctx context.Context, command string) (*exec.Cmd, error) {
	cmd := exec.CommandContext(ctx, command, p.expandArgs()...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = p.stopTimeout
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p.starts.Add(1)
	return cmd, nil
}

func (p *ProcessPlayer) expandArgs() []string {
	args := make([]string, len(p.cfg.Args))
	for i, arg := range p.cfg.Args {
		args[i] = strings.ReplaceAll(arg, constants.MusicConfig.TrackToken, p.cfg.Track)
	}
	return args
}

// NoopPlayer satisfies people.MusicController when music is disabled.
type NoopPlayer struct {
	logger *zap.Logger
}

func NewNoopPlayer(logger *zap.Logger) *NoopPlayer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoopPlayer{logger: logger}
}

func (n *NoopPlayer) Load(context.Context) error {
	return nil
}

func (n *NoopPlayer) Play(context.Context) error {
	n.logger.Debug("Music disabled, skipping playback")
	return nil
}

func (n *NoopPlayer) Stop(context.Context) error {
	return nil
}
