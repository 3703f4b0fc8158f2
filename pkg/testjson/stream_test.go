package testjson

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect streams input and returns every decoded event.
func collect(t *testing.T, input string) ([]TestEvent, int) {
	t.Helper()
	var got []TestEvent
	malformed, err := Stream(context.Background(), strings.NewReader(input), func(e TestEvent) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	return got, malformed
}

func TestStream_BuildFailureSequence(t *testing.T) {
	const build = "example.com/broken [example.com/broken.test]"
	input := strings.Join([]string{
		`{"ImportPath":"` + build + `","Action":"build-output","Output":"# example.com/broken\n"}`,
		`{"ImportPath":"` + build + `","Action":"build-fail"}`,
		`{"Action":"start","Package":"example.com/broken"}`,
		`{"Action":"fail","Package":"example.com/broken","Elapsed":0,"FailedBuild":"` + build + `"}`,
	}, "\n") + "\n"

	got, malformed := collect(t, input)
	assert.Zero(t, malformed)
	require.Len(t, got, 4)
	assert.Equal(t, ActionBuildOutput, got[0].Action)
	assert.Equal(t, build, got[0].ImportPath)
	assert.Empty(t, got[0].Package)
	assert.Equal(t, ActionBuildFail, got[1].Action)
	assert.Equal(t, build, got[3].FailedBuild)
}

func TestStream_TestLifecycleFields(t *testing.T) {
	input := `{"Time":"2026-03-04T13:05:09.5Z","Action":"run","Package":"p","Test":"TestA/sub"}` + "\n" +
		`{"Time":"2026-03-04T13:05:10Z","Action":"output","Package":"p","Test":"TestA/sub","Output":"    a_test.go:9: boom\n"}` + "\n" +
		`{"Time":"2026-03-04T13:05:10Z","Action":"fail","Package":"p","Test":"TestA/sub","Elapsed":0.5}` + "\n"

	got, _ := collect(t, input)
	require.Len(t, got, 3)
	assert.Equal(t, "TestA/sub", got[0].Test)
	assert.Equal(t, time.Date(2026, time.March, 4, 13, 5, 9, 5e8, time.UTC), got[0].Time)
	assert.Equal(t, "    a_test.go:9: boom\n", got[1].Output)
	assert.InDelta(t, 0.5, got[2].Elapsed, 1e-9)
}

func TestStream_SkipsWhatDoesNotDecode(t *testing.T) {
	// Compiler chatter and panics can leak into the stream unwrapped.
	input := strings.Join([]string{
		`# example.com/p`,
		`{"Action":"start","Package":"p"}`,
		`{"Action":"pass","Package":"p","Test":`,
		`{"Action":"teleport","Package":"p"}`,
		``,
		`panic: oops [recovered]`,
		`{"Action":"pass","Package":"p"}`,
	}, "\n") + "\n"

	got, malformed := collect(t, input)
	assert.Equal(t, 4, malformed)
	require.Len(t, got, 2)
	assert.Equal(t, ActionStart, got[0].Action)
	assert.Equal(t, ActionPass, got[1].Action)
}

func TestStream_HandlerErrorStopsAndIsReturned(t *testing.T) {
	input := strings.Repeat(`{"Action":"output","Package":"p","Output":"x\n"}`+"\n", 5)

	pluginErr := errors.New("report write failed")
	var seen int
	_, err := Stream(context.Background(), strings.NewReader(input), func(TestEvent) error {
		seen++
		if seen == 3 {
			return pluginErr
		}
		return nil
	})
	assert.ErrorIs(t, err, pluginErr)
	assert.Equal(t, 3, seen)
}

func TestStream_LongOutputLine(t *testing.T) {
	long := strings.Repeat("y", 200*1024)
	input := `{"Action":"output","Package":"p","Test":"TestBig","Output":"` + long + `"}` + "\n"

	got, malformed := collect(t, input)
	assert.Zero(t, malformed)
	require.Len(t, got, 1)
	assert.Len(t, got[0].Output, len(long))
}

func TestStream_CancelledWhileHandling(t *testing.T) {
	input := strings.Repeat(`{"Action":"run","Package":"p","Test":"TestA"}`+"\n", 3)

	ctx, cancel := context.WithCancel(context.Background())
	var seen int
	_, err := Stream(ctx, strings.NewReader(input), func(TestEvent) error {
		seen++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, seen)
}

// stalledPipe blocks in Read until closed, like stdin of a hung go test.
type stalledPipe struct {
	closed chan struct{}
}

func (p *stalledPipe) Read([]byte) (int, error) {
	<-p.closed
	return 0, io.ErrClosedPipe
}

func (p *stalledPipe) Close() error {
	select {
	case <-p.closed:
	default:
		close(p.closed)
	}
	return nil
}

func TestStream_TimeoutClosesStalledReader(t *testing.T) {
	p := &stalledPipe{closed: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := make(chan error, 1)
	go func() {
		_, err := Stream(ctx, p, func(TestEvent) error { return nil })
		result <- err
	}()

	select {
	case err := <-result:
		require.ErrorIs(t, err, context.DeadlineExceeded)
		select {
		case <-p.closed:
		default:
			t.Error("reader was not closed")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Stream still blocked after the deadline")
	}
}

func TestIsValidAction(t *testing.T) {
	for _, a := range []string{
		ActionStart, ActionRun, ActionPause, ActionCont, ActionPass, ActionBench,
		ActionFail, ActionOutput, ActionSkip, ActionBuildOutput, ActionBuildFail,
	} {
		assert.True(t, IsValidAction(a), a)
	}
	assert.False(t, IsValidAction("teleport"))
	assert.False(t, IsValidAction(""))
}

func TestDecode(t *testing.T) {
	e, err := Decode([]byte(`{"Action":"skip","Package":"p","Test":"TestLater","Elapsed":0}`))
	require.NoError(t, err)
	assert.Equal(t, TestEvent{Action: ActionSkip, Package: "p", Test: "TestLater"}, e)

	_, err = Decode([]byte(`{"Action":"teleport"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode([]byte(`{"Package":"p"}`))
	assert.ErrorIs(t, err, ErrUnknownAction, "missing Action is not an event")

	_, err = Decode([]byte(`{`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownAction)
}
