package http

import (
	"context"
	"sort"
	"strings"

	"chirper/domain"
	"chirper/errs"
)

// mockStore simulates the crud services in memory for handler tests.
// It mirrors the service contracts: ENOTFOUND for absent entities, set
// semantics for follow and like edges, all-or-nothing profile updates.
type mockStore struct {
	users   map[int]*domain.User
	tweets  map[int]*domain.Tweet
	replies map[int]*domain.Reply
	// follows maps a follower ID to the IDs they follow.
	follows map[int][]int
	// likes maps a tweet ID to the IDs of users who like it.
	likes  map[int][]int
	nextID int
}

func newMockStore() *mockStore {
	return &mockStore{
		users:   make(map[int]*domain.User),
		tweets:  make(map[int]*domain.Tweet),
		replies: make(map[int]*domain.Reply),
		follows: make(map[int][]int),
		likes:   make(map[int][]int),
	}
}

func (m *mockStore) id() int {
	m.nextID++
	return m.nextID
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []int, id int) []int {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// author returns a copy of a user suitable for embedding in responses.
func (m *mockStore) author(id int) *domain.User {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp
	}
	return nil
}

func (m *mockStore) tweetLikes(tweetID int) []int {
	ids := m.likes[tweetID]
	out := make([]int, len(ids))
	copy(out, ids)
	return out
}

func (m *mockStore) materializeTweet(t *domain.Tweet) *domain.Tweet {
	cp := *t
	cp.Author = m.author(t.AuthorID)
	cp.Likes = m.tweetLikes(t.ID)
	return &cp
}

// --- domain.UserService ---

type mockUserService struct{ *mockStore }

func (m mockUserService) ByID(_ context.Context, id int) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	cp := *u
	return &cp, nil
}

func (m mockUserService) ByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			cp.Followers = []*domain.User{}
			cp.Following = []*domain.User{}
			for follower, followed := range m.follows {
				if contains(followed, u.ID) {
					cp.Followers = append(cp.Followers, m.author(follower))
				}
			}
			for _, id := range m.follows[u.ID] {
				cp.Following = append(cp.Following, m.author(id))
			}
			return &cp, nil
		}
	}
	return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
}

func (m mockUserService) Authenticate(_ context.Context, email, password string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email && u.PasswordHash == password {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errs.Errorf(errs.ENOTAUTHENTICATED, "Invalid credentials.")
}

func (m mockUserService) Create(_ context.Context, user *domain.User) error {
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return errs.Errorf(errs.ECONFLICT, "This username or email is already taken.")
		}
	}
	user.ID = m.id()
	// The mock stores the plaintext in place of a digest.
	user.PasswordHash = user.Password
	user.Password = ""
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m mockUserService) Update(_ context.Context, id int, upd domain.UserUpdate) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
	}
	// The password gate runs first; on failure nothing is applied.
	newHash := u.PasswordHash
	if upd.NewPassword != nil {
		if upd.CurrentPassword == nil || *upd.CurrentPassword != u.PasswordHash {
			return nil, errs.Errorf(errs.EINVALID, "The current password is incorrect.")
		}
		newHash = *upd.NewPassword
	}
	if upd.Username != nil {
		for _, other := range m.users {
			if other.ID != id && other.Username == *upd.Username {
				return nil, errs.Errorf(errs.EINVALID, "This username is already taken.")
			}
		}
		u.Username = *upd.Username
	}
	u.PasswordHash = newHash
	if upd.Bio != nil {
		u.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		u.Avatar = *upd.Avatar
	}
	cp := *u
	return &cp, nil
}

func (m mockUserService) Search(_ context.Context, q string, limit int) ([]*domain.User, error) {
	out := []*domain.User{}
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(q)) {
			out = append(out, m.author(u.ID))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- domain.TweetService ---

type mockTweetService struct{ *mockStore }

func (m mockTweetService) ByID(_ context.Context, id int) (*domain.Tweet, error) {
	t, ok := m.tweets[id]
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
	}
	return m.materializeTweet(t), nil
}

func (m mockTweetService) All(_ context.Context) ([]*domain.Tweet, error) {
	out := []*domain.Tweet{}
	for _, t := range m.tweets {
		out = append(out, m.materializeTweet(t))
	}
	// Newest first. IDs are assigned in creation order.
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m mockTweetService) ByAuthorID(_ context.Context, authorID int) ([]*domain.Tweet, error) {
	out := []*domain.Tweet{}
	for _, t := range m.tweets {
		if t.AuthorID == authorID {
			out = append(out, m.materializeTweet(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m mockTweetService) Create(_ context.Context, tweet *domain.Tweet) error {
	tweet.Text = strings.TrimSpace(tweet.Text)
	if tweet.Text == "" {
		return errs.Errorf(errs.EINVALID, "Tweet text must not be empty.")
	}
	tweet.ID = m.id()
	cp := *tweet
	m.tweets[tweet.ID] = &cp
	*tweet = *m.materializeTweet(&cp)
	return nil
}

func (m mockTweetService) Delete(_ context.Context, tweet *domain.Tweet) error {
	delete(m.tweets, tweet.ID)
	delete(m.likes, tweet.ID)
	for id, r := range m.replies {
		if r.TweetID == tweet.ID {
			delete(m.replies, id)
		}
	}
	return nil
}

func (m mockTweetService) Search(_ context.Context, q string, limit int) ([]*domain.Tweet, error) {
	out := []*domain.Tweet{}
	for _, t := range m.tweets {
		if strings.Contains(strings.ToLower(t.Text), strings.ToLower(q)) {
			out = append(out, m.materializeTweet(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- domain.ReplyService ---

type mockReplyService struct{ *mockStore }

func (m mockReplyService) ByID(_ context.Context, id int) (*domain.Reply, error) {
	r, ok := m.replies[id]
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The reply does not exist.")
	}
	cp := *r
	cp.Author = m.author(r.AuthorID)
	return &cp, nil
}

func (m mockReplyService) ByTweetID(_ context.Context, tweetID int) ([]*domain.Reply, error) {
	out := []*domain.Reply{}
	for _, r := range m.replies {
		if r.TweetID == tweetID {
			cp := *r
			cp.Author = m.author(r.AuthorID)
			out = append(out, &cp)
		}
	}
	// Oldest first.
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m mockReplyService) Create(_ context.Context, reply *domain.Reply) error {
	if _, ok := m.tweets[reply.TweetID]; !ok {
		return errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
	}
	reply.Text = strings.TrimSpace(reply.Text)
	if reply.Text == "" {
		return errs.Errorf(errs.EINVALID, "Reply text must not be empty.")
	}
	reply.ID = m.id()
	cp := *reply
	m.replies[reply.ID] = &cp
	reply.Author = m.author(reply.AuthorID)
	return nil
}

func (m mockReplyService) Delete(_ context.Context, reply *domain.Reply) error {
	delete(m.replies, reply.ID)
	return nil
}

// --- domain.FollowService ---

type mockFollowService struct{ *mockStore }

func (m mockFollowService) Toggle(_ context.Context, followerID, followedID int) (string, error) {
	if followerID == followedID {
		return "", errs.Errorf(errs.EINVALID, "You cannot follow yourself.")
	}
	for _, id := range []int{followerID, followedID} {
		if _, ok := m.users[id]; !ok {
			return "", errs.Errorf(errs.ENOTFOUND, "The user does not exist.")
		}
	}
	if contains(m.follows[followerID], followedID) {
		m.follows[followerID] = remove(m.follows[followerID], followedID)
		return domain.Unfollowed, nil
	}
	m.follows[followerID] = append(m.follows[followerID], followedID)
	return domain.Followed, nil
}

// --- domain.LikeService ---

type mockLikeService struct{ *mockStore }

func (m mockLikeService) Toggle(_ context.Context, tweetID, userID int) (*domain.Tweet, error) {
	t, ok := m.tweets[tweetID]
	if !ok {
		return nil, errs.Errorf(errs.ENOTFOUND, "The tweet does not exist.")
	}
	if contains(m.likes[tweetID], userID) {
		m.likes[tweetID] = remove(m.likes[tweetID], userID)
	} else {
		m.likes[tweetID] = append(m.likes[tweetID], userID)
	}
	return m.materializeTweet(t), nil
}
