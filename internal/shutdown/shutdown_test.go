package shutdown

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCommandFor(t *testing.T) {
	assert.Equal(t, "shutdown /s /t 0", defaultCommandFor("windows"))
	assert.Equal(t, "shutdown -h now", defaultCommandFor("linux"))
	assert.Equal(t, "shutdown -h now", defaultCommandFor("darwin"))
}

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{"default", "", nil, false},
		{"simple", "systemctl poweroff", []string{"systemctl", "poweroff"}, false},
		{"quoted", `sh -c "echo bye && poweroff"`, []string{"sh", "-c", "echo bye && poweroff"}, false},
		{"bad quoting", `sh -c "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Equal(t, DefaultCommand(), cmd.String())
				return
			}
			assert.Equal(t, tt.want, cmd.args)
		})
	}
}

func TestCommandShutdownRunsArgs(t *testing.T) {
	var gotName string
	var gotArgs []string
	orig := runCommandFunc
	runCommandFunc = func(ctx context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}
	t.Cleanup(func() { runCommandFunc = orig })

	cmd, err := NewCommand("shutdown -h now")
	require.NoError(t, err)
	require.NoError(t, cmd.Shutdown(context.Background()))

	assert.Equal(t, "shutdown", gotName)
	assert.Equal(t, []string{"-h", "now"}, gotArgs)
	assert.Equal(t, "shutdown", cmd.Program())
}

func TestCommandShutdownWrapsError(t *testing.T) {
	orig := runCommandFunc
	runCommandFunc = func(ctx context.Context, name string, args ...string) error {
		return errors.New("permission denied")
	}
	t.Cleanup(func() { runCommandFunc = orig })

	cmd, err := NewCommand("shutdown -h now")
	require.NoError(t, err)

	err = cmd.Shutdown(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestDryRun(t *testing.T) {
	cmd, err := NewCommand("shutdown -h now")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, DryRun{Command: cmd, Out: &out}.Shutdown(context.Background()))
	assert.Equal(t, "Dry run: would run \"shutdown -h now\"\n", out.String())
}

type blockingShutdowner struct {
	release chan struct{}
	done    chan struct{}
	err     error
}

func (b *blockingShutdowner) Shutdown(ctx context.Context) error {
	<-b.release
	close(b.done)
	return b.err
}

func TestAsyncReturnsBeforeShutdownFinishes(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure is swallowed", errors.New("permission denied")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &blockingShutdowner{release: make(chan struct{}), done: make(chan struct{}), err: tt.err}
			ctx, cancel := context.WithCancel(context.Background())

			require.NoError(t, Async{Shutdowner: inner}.Shutdown(ctx))
			cancel()

			select {
			case <-inner.done:
				t.Fatal("inner shutdown finished before it was released")
			default:
			}

			close(inner.release)
			select {
			case <-inner.done:
			case <-time.After(2 * time.Second):
				t.Fatal("inner shutdown never ran")
			}
		})
	}
}

func TestDelegatedDoesNothing(t *testing.T) {
	called := false
	orig := runCommandFunc
	runCommandFunc = func(ctx context.Context, name string, args ...string) error {
		called = true
		return nil
	}
	t.Cleanup(func() { runCommandFunc = orig })

	var s Shutdowner = Delegated{PID: 4242}
	require.NoError(t, s.Shutdown(context.Background()))
	assert.False(t, called)
}
