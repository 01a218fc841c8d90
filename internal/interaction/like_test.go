package interaction

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-client/internal/domain"
	"blog-client/internal/notice"
)

type fakeLikes struct {
	status    map[int64]domain.LikeStatus
	statusErr error
	toggle    domain.LikeToggle
	toggleErr error
	toggled   []int64
	gate      map[int64]chan struct{}
}

func (f *fakeLikes) LikeStatus(_ context.Context, id int64) (domain.LikeStatus, error) {
	if ch, ok := f.gate[id]; ok {
		<-ch
	}
	return f.status[id], f.statusErr
}

func (f *fakeLikes) ToggleLike(_ context.Context, id int64) (domain.LikeToggle, error) {
	f.toggled = append(f.toggled, id)
	return f.toggle, f.toggleErr
}

func TestLike_ToggleAdoptsServerAnswer(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := &fakeLikes{
		status: map[int64]domain.LikeStatus{10: {Liked: false, Count: 42}},
		toggle: domain.LikeToggle{Liked: true},
	}
	c := NewLikeController(api, log, &notice.Recorder{})

	st := c.Load(context.Background(), 10)
	assert.False(t, st.Loading)
	assert.EqualValues(t, 42, st.Count)
	assert.Equal(t, "Like", st.Label())

	st = c.Toggle(context.Background())
	assert.Equal(t, []int64{10}, api.toggled)
	assert.True(t, st.Liked)
	assert.EqualValues(t, 43, st.Count)
	assert.Equal(t, "Unlike", st.Label())
	assert.Equal(t, "43 Likes", st.CountLabel())

	api.toggle = domain.LikeToggle{Liked: false}
	st = c.Toggle(context.Background())
	assert.False(t, st.Liked)
	assert.EqualValues(t, 42, st.Count)
}

func TestLike_ToggleWithoutTransitionKeepsCount(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := &fakeLikes{
		status: map[int64]domain.LikeStatus{3: {Liked: true, Count: 1}},
		toggle: domain.LikeToggle{Liked: true},
	}
	c := NewLikeController(api, log, &notice.Recorder{})
	c.Load(context.Background(), 3)

	st := c.Toggle(context.Background())
	assert.True(t, st.Liked)
	assert.EqualValues(t, 1, st.Count)
	assert.Equal(t, "1 Like", st.CountLabel())
}

func TestLike_FailedToggleLeavesState(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := &fakeLikes{
		status:    map[int64]domain.LikeStatus{10: {Liked: false, Count: 42}},
		toggleErr: errors.New("network down"),
	}
	rec := &notice.Recorder{}
	c := NewLikeController(api, log, rec)
	before := c.Load(context.Background(), 10)

	after := c.Toggle(context.Background())
	assert.Equal(t, before, after)
	assert.Len(t, rec.Notices(), 1)
}

func TestLike_FetchFailureFallsBackToZero(t *testing.T) {
	log, hook := test.NewNullLogger()
	api := &fakeLikes{statusErr: errors.New("boom")}
	c := NewLikeController(api, log, &notice.Recorder{})

	st := c.Load(context.Background(), 4)
	assert.False(t, st.Loading)
	assert.False(t, st.Liked)
	assert.Zero(t, st.Count)
	assert.NotNil(t, hook.LastEntry())
}

func TestLike_ToggleIgnoredBeforeLoad(t *testing.T) {
	log, _ := test.NewNullLogger()
	api := &fakeLikes{}
	c := NewLikeController(api, log, &notice.Recorder{})

	c.Toggle(context.Background())
	assert.Empty(t, api.toggled)
}

func TestLike_StaleStatusIsDiscarded(t *testing.T) {
	log, _ := test.NewNullLogger()
	gate := make(chan struct{})
	api := &fakeLikes{
		status: map[int64]domain.LikeStatus{5: {Liked: true, Count: 9}, 6: {Count: 2}},
		gate:   map[int64]chan struct{}{5: gate},
	}
	c := NewLikeController(api, log, &notice.Recorder{})

	done := make(chan struct{})
	go func() {
		c.Load(context.Background(), 5)
		close(done)
	}()

	require.Eventually(t, func() bool { return c.State().BlogID == 5 }, timeout, tick)
	c.Load(context.Background(), 6)
	close(gate)
	<-done

	st := c.State()
	assert.EqualValues(t, 6, st.BlogID)
	assert.EqualValues(t, 2, st.Count)
	assert.False(t, st.Liked)
}
