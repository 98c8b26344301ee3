package music

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/kapu/cantina-go/pkg/errors"
	"go.uber.org/zap"
)

func writeTrack(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cantina.mp3")
	if err := os.WriteFile(path, []byte("ID3"), 0o644); err != nil {
		t.Fatalf("write track: %v", err)
	}
	return path
}

func requireCommand(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestLoadFailsForMissingTrack(t *testing.T) {
	player := NewProcessPlayer(PlayerConfig{
		Command: "sleep",
		Track:   filepath.Join(t.TempDir(), "missing.mp3"),
	}, zap.NewNop())

	err := player.Load(context.Background())
	var playbackErr *errors.PlaybackError
	if !stderrors.As(err, &playbackErr) || playbackErr.Operation != "load" {
		t.Fatalf("expected load PlaybackError, got %v", err)
	}
}

func TestLoadFailsForUnknownPlayer(t *testing.T) {
	player := NewProcessPlayer(PlayerConfig{
		Command: "cantina-player-that-does-not-exist",
		Track:   writeTrack(t),
	}, zap.NewNop())

	if err := player.Load(context.Background()); err == nil {
		t.Fatalf("expected error for unknown player binary")
	}
}

func TestLoadFailsWithoutTrack(t *testing.T) {
	player := NewProcessPlayer(PlayerConfig{Command: "sleep"}, zap.NewNop())
	if err := player.Load(context.Background()); err == nil {
		t.Fatalf("expected error without a track")
	}
}

func TestPlayBeforeLoadIsHarmless(t *testing.T) {
	player := NewProcessPlayer(PlayerConfig{Command: "sleep", Args: []string{"30"}}, zap.NewNop())

	if err := player.Play(context.Background()); err != nil {
		t.Fatalf("Play before Load: %v", err)
	}
	if player.IsPlaying() {
		t.Fatalf("expected nothing to play before Load")
	}
}

func TestPlayAndStop(t *testing.T) {
	requireCommand(t, "sleep")
	player := NewProcessPlayer(PlayerConfig{
		Command: "sleep",
		Args:    []string{"30"},
		Track:   writeTrack(t),
	}, zap.NewNop())

	ctx := context.Background()
	if err := player.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := player.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := player.Play(ctx); err != nil {
		t.Fatalf("second Play: %v", err)
	}
	if !player.IsPlaying() {
		t.Fatalf("expected player to be running")
	}
	if got := player.starts.Load(); got != 1 {
		t.Fatalf("expected one process, got %d", got)
	}

	if err := player.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if player.IsPlaying() {
		t.Fatalf("expected player to be stopped")
	}
}

func TestPlayRestartsFinishedTrack(t *testing.T) {
	requireCommand(t, "true")
	player := NewProcessPlayer(PlayerConfig{
		Command: "true",
		Track:   writeTrack(t),
	}, zap.NewNop())
	player.restartDelay = 10 * time.Millisecond

	ctx := context.Background()
	if err := player.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := player.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	defer func() { _ = player.Stop(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for player.starts.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected the track to loop, got %d starts", player.starts.Load())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFailedRestartReleasesPlayer(t *testing.T) {
	requireCommand(t, "sh")
	script := filepath.Join(t.TempDir(), "player.sh")
	writeScript := func() {
		if err := os.WriteFile(script, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write script: %v", err)
		}
	}
	writeScript()

	player := NewProcessPlayer(PlayerConfig{
		Command: script,
		Track:   writeTrack(t),
	}, zap.NewNop())
	player.restartDelay = 20 * time.Millisecond

	ctx := context.Background()
	if err := player.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := player.Play(ctx); err != nil {
		t.Fatalf("Play: %v", err)
	}
	defer func() { _ = player.Stop(ctx) }()

	if err := os.Remove(script); err != nil {
		t.Fatalf("remove script: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for player.IsPlaying() {
		if time.Now().After(deadline) {
			t.Fatalf("expected player to stop reporting playback after a failed restart")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := player.Play(ctx); err == nil {
		t.Fatalf("expected Play to fail while the player binary is missing")
	}

	writeScript()
	before := player.starts.Load()
	if err := player.Play(ctx); err != nil {
		t.Fatalf("Play after restoring player: %v", err)
	}
	if !player.IsPlaying() || player.starts.Load() <= before {
		t.Fatalf("expected a fresh process, got playing=%v starts=%d", player.IsPlaying(), player.starts.Load())
	}
}

func TestStopWithoutPlay(t *testing.T) {
	player := NewProcessPlayer(PlayerConfig{Command: "sleep"}, zap.NewNop())
	if err := player.Stop(context.Background()); err != nil {
		t.Fatalf("Stop without Play: %v", err)
	}
}

func TestExpandArgs(t *testing.T) {
	player := NewProcessPlayer(PlayerConfig{
		Command: "mpg123",
		Args:    []string{"--quiet", "{track}"},
		Track:   "/music/cantina.mp3",
	}, zap.NewNop())

	args := player.expandArgs()
	if len(args) != 2 || args[0] != "--quiet" || args[1] != "/music/cantina.mp3" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestNoopPlayer(t *testing.T) {
	player := NewNoopPlayer(nil)
	ctx := context.Background()
	if player.Load(ctx) != nil || player.Play(ctx) != nil || player.Stop(ctx) != nil {
		t.Fatalf("expected noop player to never fail")
	}
}
