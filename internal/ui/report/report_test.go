package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/types"
)

const testDelay = 50 * time.Millisecond

type recorder struct {
	mu     sync.Mutex
	states []State
}

func (r *recorder) record(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, s)
}

func (r *recorder) get() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.states...)
}

func TestButtonSuccessCycle(t *testing.T) {
	rec := &recorder{}
	b := NewButton(testDelay, rec.record)
	require.Equal(t, Idle, b.State())
	require.False(t, b.Disabled())

	err := b.Run(context.Background(), func(ctx context.Context) error {
		assert.Equal(t, Generating, b.State())
		assert.True(t, b.Disabled())
		assert.Equal(t, "⏳ Gerando PDF...", b.Label())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Succeeded, b.State())
	assert.Equal(t, "✅ PDF Gerado!", b.Label())

	require.Eventually(t, func() bool { return len(rec.get()) == 3 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Idle, b.State())
	assert.Equal(t, []State{Generating, Succeeded, Idle}, rec.get())
}

func TestButtonFailureResetsToOriginalLabel(t *testing.T) {
	b := NewButton(testDelay, nil)
	original := b.Label()
	generateErr := errors.New("HTTP 500")

	err := b.Run(context.Background(), func(ctx context.Context) error { return generateErr })
	require.ErrorIs(t, err, generateErr)

	assert.Equal(t, Failed, b.State())
	assert.Equal(t, "❌ Erro ao gerar PDF", b.Label())
	assert.True(t, b.Disabled())

	require.Eventually(t, func() bool { return b.State() == Idle }, time.Second, 5*time.Millisecond)
	assert.False(t, b.Disabled())
	assert.Equal(t, original, b.Label())
}

func TestButtonRejectsConcurrentRun(t *testing.T) {
	b := NewButton(testDelay, nil)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- b.Run(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	called := false
	err := b.Run(context.Background(), func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrBusy)
	assert.False(t, called)

	close(release)
	require.NoError(t, <-done)
}

func TestButtonRunDuringResetDelay(t *testing.T) {
	b := NewButton(time.Hour, nil)
	require.Error(t, b.Run(context.Background(), func(ctx context.Context) error { return errors.New("boom") }))

	// a second click before the reset restarts the cycle
	require.NoError(t, b.Run(context.Background(), func(ctx context.Context) error { return nil }))
	assert.Equal(t, Succeeded, b.State())
}

func TestButtonStaleResetIsIgnored(t *testing.T) {
	b := NewButton(time.Hour, nil)
	require.NoError(t, b.Run(context.Background(), func(ctx context.Context) error { return nil }))

	b.mu.Lock()
	stale := b.gen
	b.mu.Unlock()

	require.NoError(t, b.Run(context.Background(), func(ctx context.Context) error { return nil }))

	// the timer armed by the first run fires after the second run finished
	b.reset(stale)
	assert.Equal(t, Succeeded, b.State())
}

func TestButtonsDropIdleButtons(t *testing.T) {
	bs := NewButtons(testDelay)
	assert.Equal(t, Idle, bs.State("session-1/11"))

	require.NoError(t, bs.Run(context.Background(), "session-1/11", func(ctx context.Context) error {
		assert.Equal(t, Generating, bs.State("session-1/11"))
		return nil
	}))
	assert.Equal(t, 1, bs.Len())
	assert.Equal(t, Succeeded, bs.State("session-1/11"))

	require.Eventually(t, func() bool { return bs.Len() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, Idle, bs.State("session-1/11"))
}

func TestButtonsRunAfterReset(t *testing.T) {
	bs := NewButtons(time.Millisecond)

	for range 50 {
		err := bs.Run(context.Background(), "session-1/11", func(ctx context.Context) error {
			assert.Equal(t, Generating, bs.State("session-1/11"), "a running button is tracked by the set")
			return nil
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	require.Eventually(t, func() bool { return bs.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestButtonsRejectConcurrentRun(t *testing.T) {
	bs := NewButtons(testDelay)
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- bs.Run(context.Background(), "k", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := bs.Run(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "generating", Generating.String())
	assert.Equal(t, "success", Succeeded.String())
	assert.Equal(t, "error", Failed.String())
	assert.Equal(t, "📄 GERAR RELATÓRIO PDF", Idle.Label())
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	report := &client.Report{FileName: "relatorio_BR-22-1804_2025-03-09.pdf", Data: []byte("%PDF-1.4")}

	path, err := Save(filepath.Join(dir, "out"), report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out", "relatorio_BR-22-1804_2025-03-09.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), data)

	// no temporary file left behind
	entries, err := os.ReadDir(filepath.Join(dir, "out"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSaveKeepsCodeWithSlash(t *testing.T) {
	dir := t.TempDir()
	name := types.ReportFileName("BR/22/1804", time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC))

	path, err := Save(dir, &client.Report{FileName: name, Data: []byte("%PDF-1.4")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "relatorio_BR-22-1804_2025-03-09.pdf"), path)
}

func TestSaveCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	// the target name is an existing non-empty directory, so the rename fails
	blocked := filepath.Join(dir, "relatorio.pdf")
	require.NoError(t, os.MkdirAll(filepath.Join(blocked, "x"), 0o755))

	_, err := Save(dir, &client.Report{FileName: "relatorio.pdf", Data: []byte("%PDF")})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "relatorio.pdf", entries[0].Name())
}

func TestSaveRequiresFileName(t *testing.T) {
	_, err := Save(t.TempDir(), &client.Report{})
	assert.Error(t, err)
}
