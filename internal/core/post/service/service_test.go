package postapp

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"socialfeed/internal/core/fanoutqueue"
	postEntity "socialfeed/internal/core/post"
	userEntity "socialfeed/internal/core/user"
	eventPort "socialfeed/internal/ports/event"
	postPort "socialfeed/internal/ports/post"
	"socialfeed/internal/util"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs the fake repositories below.
type memStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]userEntity.User
	follows map[uuid.UUID]map[uuid.UUID]bool
	posts   map[uuid.UUID]*postEntity.Post
	likes   map[[2]uuid.UUID]bool

	visibleCalls int
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[uuid.UUID]userEntity.User{},
		follows: map[uuid.UUID]map[uuid.UUID]bool{},
		posts:   map[uuid.UUID]*postEntity.Post{},
		likes:   map[[2]uuid.UUID]bool{},
	}
}

func (m *memStore) addUser(firstname, lastname string) uuid.UUID {
	id := uuid.Must(uuid.NewV4())
	m.users[id] = userEntity.User{ID: id, Firstname: firstname, Lastname: lastname, Avatar: firstname + ".png"}
	return id
}

func (m *memStore) follow(follower, followee uuid.UUID) {
	if m.follows[follower] == nil {
		m.follows[follower] = map[uuid.UUID]bool{}
	}
	m.follows[follower][followee] = true
}

type fakePostRepo struct{ s *memStore }

func (r *fakePostRepo) Create(ctx context.Context, p *postEntity.Post) (*postEntity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *p
	r.s.posts[p.ID] = &cp
	return p, nil
}

func (r *fakePostRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.posts[id]
	return ok, nil
}

func (r *fakePostRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*postEntity.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*postEntity.Post
	for _, id := range ids {
		if p, ok := r.s.posts[id]; ok {
			cp := *p
			cp.User = r.s.users[p.UserID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakePostRepo) FindVisibleIDs(ctx context.Context, viewerID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.visibleCalls++
	var visible []*postEntity.Post
	for _, p := range r.s.posts {
		if p.UserID == viewerID || r.s.follows[viewerID][p.UserID] {
			visible = append(visible, p)
		}
	}
	sort.Slice(visible, func(i, j int) bool {
		if !visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
			return visible[i].CreatedAt.After(visible[j].CreatedAt)
		}
		return visible[i].ID.String() > visible[j].ID.String()
	})
	ids := make([]uuid.UUID, 0, len(visible))
	for _, p := range visible {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

type fakeLikeRepo struct{ s *memStore }

func (r *fakeLikeRepo) Like(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{userID, postID}
	if r.s.likes[key] {
		return false, nil
	}
	r.s.likes[key] = true
	return true, nil
}

func (r *fakeLikeRepo) Unlike(ctx context.Context, userID, postID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := [2]uuid.UUID{userID, postID}
	if !r.s.likes[key] {
		return false, nil
	}
	delete(r.s.likes, key)
	return true, nil
}

func (r *fakeLikeRepo) CountByPostIDs(ctx context.Context, postIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[uuid.UUID]int64{}
	for key := range r.s.likes {
		for _, pid := range postIDs {
			if key[1] == pid {
				out[pid]++
				break
			}
		}
	}
	return out, nil
}

func (r *fakeLikeRepo) LikedPostIDs(ctx context.Context, userID uuid.UUID, postIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[uuid.UUID]bool{}
	for _, pid := range postIDs {
		if r.s.likes[[2]uuid.UUID{userID, pid}] {
			out[pid] = true
		}
	}
	return out, nil
}

type fakeFanoutRepo struct{ created []*fanoutqueue.FanoutQueue }

func (r *fakeFanoutRepo) Create(ctx context.Context, fq *fanoutqueue.FanoutQueue) (*fanoutqueue.FanoutQueue, error) {
	r.created = append(r.created, fq)
	return fq, nil
}

func (r *fakeFanoutRepo) GetPendingPosts(ctx context.Context, limit int64) ([]*fanoutqueue.FanoutQueue, error) {
	return r.created, nil
}

func (r *fakeFanoutRepo) MarkDone(ctx context.Context, id uuid.UUID) error { return nil }

type fakeCache struct {
	entries     map[string][]string
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string][]string{}} }

func (c *fakeCache) Get(ctx context.Context, viewerID string) ([]string, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	ids, ok := c.entries[viewerID]
	return ids, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, viewerID string, postIDs []string) error {
	c.entries[viewerID] = postIDs
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, viewerIDs ...string) error {
	for _, id := range viewerIDs {
		delete(c.entries, id)
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

type fakePublisher struct {
	events []eventPort.Event
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, ev eventPort.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

// stalledPublisher never reaches its broker and gives up only when ctx ends.
type stalledPublisher struct {
	ctxErrs []error
}

func (p *stalledPublisher) Publish(ctx context.Context, ev eventPort.Event) error {
	<-ctx.Done()
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	return ctx.Err()
}

func (p *stalledPublisher) Close() error { return nil }

type fixture struct {
	store  *memStore
	clock  *util.StubClock
	fanout *fakeFanoutRepo
	svc    *PostService
}

func newFixture() *fixture {
	store := newMemStore()
	clock := util.NewStubClock(time.Date(2020, 12, 5, 13, 53, 23, 0, time.UTC))
	fanout := &fakeFanoutRepo{}
	svc := NewPostService(&fakePostRepo{store}, &fakeLikeRepo{store}, fanout, nil, nil, clock, nil)
	return &fixture{store: store, clock: clock, fanout: fanout, svc: svc}
}

func strPtr(s string) *string { return &s }

func TestGetVisiblePostIDs_EmptyWithoutPostsOrFollows(t *testing.T) {
	f := newFixture()
	alone := f.store.addUser("Alone", "User")

	ids, err := f.svc.GetVisiblePostIDs(context.Background(), alone.String())
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestGetVisiblePostIDs_OwnAndFollowedOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("Gordon", "Freeman")
	b := f.store.addUser("Sarah", "Connor")
	c := f.store.addUser("Richard", "Stallman")
	f.store.follow(a, b)

	own, err := f.svc.CreatePost(ctx, a.String(), strPtr("mine"), nil)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	followed, err := f.svc.CreatePost(ctx, b.String(), strPtr("followed"), nil)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	_, err = f.svc.CreatePost(ctx, c.String(), strPtr("stranger"), nil)
	require.NoError(t, err)

	ids, err := f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)
	assert.Equal(t, []string{followed, own}, ids)

	// b does not follow a, so only b's own post is visible to b.
	ids, err = f.svc.GetVisiblePostIDs(ctx, b.String())
	require.NoError(t, err)
	assert.Equal(t, []string{followed}, ids)
}

func TestGetVisiblePostIDs_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")

	var created []string
	for i := 0; i < 4; i++ {
		id, err := f.svc.CreatePost(ctx, a.String(), strPtr("post"), nil)
		require.NoError(t, err)
		created = append(created, id)
		f.clock.Advance(time.Minute)
	}

	ids, err := f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)
	assert.Equal(t, []string{created[3], created[2], created[1], created[0]}, ids)
}

func TestGetVisiblePostIDs_TiesBrokenByIDDescending(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")

	first, err := f.svc.CreatePost(ctx, a.String(), strPtr("one"), nil)
	require.NoError(t, err)
	second, err := f.svc.CreatePost(ctx, a.String(), strPtr("two"), nil)
	require.NoError(t, err)

	want := []string{first, second}
	sort.Sort(sort.Reverse(sort.StringSlice(want)))

	ids, err := f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)
	assert.Equal(t, want, ids)
}

func TestCreatePost_RoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("Gordon", "Freeman")

	_, err := f.svc.CreatePost(ctx, a.String(), strPtr("hello"), nil)
	require.NoError(t, err)

	feed, err := f.svc.GetFeed(ctx, a.String(), 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "hello", *feed[0].Text)
	assert.Nil(t, feed[0].Media)
	assert.Equal(t, int64(0), feed[0].Likes)
	assert.False(t, feed[0].Liked)
	assert.Equal(t, f.clock.NowUtc(), feed[0].CreateTime)
	assert.Equal(t, postPort.AuthorDTO{ID: a.String(), Firstname: "Gordon", Lastname: "Freeman", Avatar: "Gordon.png"}, feed[0].Author)
}

func TestCreatePost_WithMediaOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("Richard", "Stallman")

	id, err := f.svc.CreatePost(ctx, a.String(), nil, &postPort.MediaDTO{Type: "video", URL: "test-video.mp4"})
	require.NoError(t, err)

	view, err := f.svc.GetPost(ctx, id, a.String())
	require.NoError(t, err)
	assert.Nil(t, view.Text)
	require.NotNil(t, view.Media)
	assert.Equal(t, postPort.MediaDTO{URL: "test-video.mp4", Type: "video"}, *view.Media)
}

func TestCreatePost_InvalidAuthor(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreatePost(context.Background(), "not-a-uuid", strPtr("x"), nil)
	assert.Error(t, err)
}

func TestLikeTwiceThenUnlike_RestoresCount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	author := f.store.addUser("B", "B")
	other := f.store.addUser("C", "C")
	viewer := f.store.addUser("U", "U")

	postID, err := f.svc.CreatePost(ctx, author.String(), strPtr("p"), nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.Like(ctx, other.String(), postID))

	before, err := f.svc.GetPost(ctx, postID, viewer.String())
	require.NoError(t, err)
	require.Equal(t, int64(1), before.Likes)

	require.NoError(t, f.svc.Like(ctx, viewer.String(), postID))
	require.NoError(t, f.svc.Like(ctx, viewer.String(), postID))

	mid, err := f.svc.GetPost(ctx, postID, viewer.String())
	require.NoError(t, err)
	assert.Equal(t, int64(2), mid.Likes)
	assert.True(t, mid.Liked)

	require.NoError(t, f.svc.Unlike(ctx, viewer.String(), postID))

	after, err := f.svc.GetPost(ctx, postID, viewer.String())
	require.NoError(t, err)
	assert.Equal(t, before.Likes, after.Likes)
	assert.False(t, after.Liked)
}

func TestUnlike_WithoutLikeIsNoop(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")
	postID, err := f.svc.CreatePost(ctx, a.String(), strPtr("p"), nil)
	require.NoError(t, err)

	assert.NoError(t, f.svc.Unlike(ctx, a.String(), postID))
}

func TestLikeUnlike_UnknownPost(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")
	missing := uuid.Must(uuid.NewV4()).String()

	assert.ErrorIs(t, f.svc.Like(ctx, a.String(), missing), postEntity.ErrPostNotFound)
	assert.ErrorIs(t, f.svc.Unlike(ctx, a.String(), missing), postEntity.ErrPostNotFound)
	assert.ErrorIs(t, f.svc.Like(ctx, a.String(), "garbage"), postEntity.ErrPostNotFound)
}

func TestFollowedAuthorScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("Alice", "A")
	b := f.store.addUser("Bob", "B")
	f.store.follow(a, b)

	_, err := f.svc.CreatePost(ctx, b.String(), strPtr("rain tomorrow?"), nil)
	require.NoError(t, err)

	feed, err := f.svc.GetFeed(ctx, a.String(), 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, "rain tomorrow?", *feed[0].Text)
	assert.Equal(t, b.String(), feed[0].Author.ID)
	assert.Equal(t, int64(0), feed[0].Likes)
	assert.False(t, feed[0].Liked)

	require.NoError(t, f.svc.Like(ctx, a.String(), feed[0].ID))

	feed, err = f.svc.GetFeed(ctx, a.String(), 0, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, int64(1), feed[0].Likes)
	assert.True(t, feed[0].Liked)
}

func TestGetPostsByIDs_PreservesRequestOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")

	p1, err := f.svc.CreatePost(ctx, a.String(), strPtr("1"), nil)
	require.NoError(t, err)
	p2, err := f.svc.CreatePost(ctx, a.String(), strPtr("2"), nil)
	require.NoError(t, err)
	p3, err := f.svc.CreatePost(ctx, a.String(), strPtr("3"), nil)
	require.NoError(t, err)

	views, err := f.svc.GetPostsByIDs(ctx, []string{p2, p3, p1}, a.String())
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, []string{p2, p3, p1}, []string{views[0].ID, views[1].ID, views[2].ID})
}

func TestGetPostsByIDs_MissingID(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")
	p1, err := f.svc.CreatePost(ctx, a.String(), strPtr("1"), nil)
	require.NoError(t, err)

	_, err = f.svc.GetPostsByIDs(ctx, []string{p1, uuid.Must(uuid.NewV4()).String()}, a.String())
	assert.ErrorIs(t, err, postEntity.ErrPostNotFound)

	_, err = f.svc.GetPost(ctx, "nope", a.String())
	assert.ErrorIs(t, err, postEntity.ErrPostNotFound)
}

func TestGetPostsByIDs_Empty(t *testing.T) {
	f := newFixture()
	views, err := f.svc.GetPostsByIDs(context.Background(), nil, uuid.Must(uuid.NewV4()).String())
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestGetFeed_Pagination(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.addUser("A", "A")
	for i := 0; i < 5; i++ {
		_, err := f.svc.CreatePost(ctx, a.String(), strPtr("p"), nil)
		require.NoError(t, err)
		f.clock.Advance(time.Second)
	}
	all, err := f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)

	pageTwo, err := f.svc.GetFeed(ctx, a.String(), 2, 2)
	require.NoError(t, err)
	require.Len(t, pageTwo, 2)
	assert.Equal(t, all[2], pageTwo[0].ID)
	assert.Equal(t, all[3], pageTwo[1].ID)

	beyond, err := f.svc.GetFeed(ctx, a.String(), 10, 2)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestTimelineCache_ReadThroughAndInvalidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	cache := newFakeCache()
	f.svc.TimelineCache = cache
	a := f.store.addUser("A", "A")

	postID, err := f.svc.CreatePost(ctx, a.String(), strPtr("p"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{a.String()}, cache.invalidated)
	require.Len(t, f.fanout.created, 1)
	assert.Equal(t, fanoutqueue.StatusPending, f.fanout.created[0].Status)
	assert.Equal(t, a, f.fanout.created[0].UserID)

	ids, err := f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)
	assert.Equal(t, []string{postID}, ids)
	assert.Equal(t, []string{postID}, cache.entries[a.String()])

	ids, err = f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)
	assert.Equal(t, []string{postID}, ids)
	assert.Equal(t, 1, f.store.visibleCalls, "second read is served from the cache")
}

func TestTimelineCache_ErrorFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	f.svc.TimelineCache = cache
	a := f.store.addUser("A", "A")

	postID, err := f.svc.CreatePost(ctx, a.String(), strPtr("p"), nil)
	require.NoError(t, err)

	ids, err := f.svc.GetVisiblePostIDs(ctx, a.String())
	require.NoError(t, err)
	assert.Equal(t, []string{postID}, ids)
}

func TestEvents_PublishedOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	f.svc.Publisher = pub
	a := f.store.addUser("A", "A")

	postID, err := f.svc.CreatePost(ctx, a.String(), strPtr("p"), nil)
	require.NoError(t, err, "publisher failures do not fail the write")
	require.NoError(t, f.svc.Like(ctx, a.String(), postID))
	require.NoError(t, f.svc.Like(ctx, a.String(), postID))
	require.NoError(t, f.svc.Unlike(ctx, a.String(), postID))
	require.NoError(t, f.svc.Unlike(ctx, a.String(), postID))

	var types []string
	for _, ev := range pub.events {
		types = append(types, ev.Type)
		assert.Equal(t, postID, ev.PostID)
		assert.Equal(t, a.String(), ev.UserID)
	}
	assert.Equal(t, []string{eventPort.TypePostCreated, eventPort.TypePostLiked, eventPort.TypePostUnliked}, types)
}

func TestEvents_StalledBrokerDoesNotBlockWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	pub := &stalledPublisher{}
	f.svc.Publisher = pub
	f.svc.PublishTimeout = 20 * time.Millisecond
	a := f.store.addUser("A", "A")

	start := time.Now()
	postID, err := f.svc.CreatePost(ctx, a.String(), strPtr("p"), nil)
	require.NoError(t, err)
	require.NoError(t, f.svc.Like(ctx, a.String(), postID))
	assert.Less(t, time.Since(start), 5*time.Second)

	require.Len(t, pub.ctxErrs, 2)
	for _, err := range pub.ctxErrs {
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}

	assert.True(t, f.store.likes[[2]uuid.UUID{a, uuid.FromStringOrNil(postID)}])
}
