package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"follow-graph/internal/domain"
	"follow-graph/internal/repository"
	"follow-graph/internal/validate"
)

// GraphService is the follow-graph mutation and query engine.
type GraphService interface {
	Follow(ctx context.Context, userID, followID string) error
	Unfollow(ctx context.Context, userID, unfollowID string) error
	ListUsers(ctx context.Context) ([]domain.UserView, error)
	DailyFollowerCounts(ctx context.Context, userID string) ([]domain.DailyCount, error)
	MutualFollowers(ctx context.Context, userID1, userID2 string) ([]domain.Peer, error)
	Reconcile(ctx context.Context) (ReconcileReport, error)
}

// ReconcileReport summarizes one half-edge repair pass.
type ReconcileReport struct {
	CompletedFollowers  int
	CompletedFollowings int
	DroppedHalfEdges    int
}

func (r ReconcileReport) Total() int {
	return r.CompletedFollowers + r.CompletedFollowings + r.DroppedHalfEdges
}

type graphService struct {
	users repository.UserRepository
	graph repository.GraphRepository
}

func NewGraphService(users repository.UserRepository, graph repository.GraphRepository) GraphService {
	return &graphService{users: users, graph: graph}
}

// Follow creates the directed edge userID -> followID as two conditional
// writes. The outgoing side must land before the incoming side is
// attempted; when the second write fails the first is not rolled back and
// the store keeps a half-edge until a later unfollow or repair pass.
func (s *graphService) Follow(ctx context.Context, userID, followID string) error {
	if err := s.validatePair(userID, followID); err != nil {
		return err
	}

	since := time.Now().UTC()

	if err := s.graph.AddFollowing(ctx, userID, followID, since); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return fmt.Errorf("%w: %s", domain.ErrFollowingUpdateFailed,
				s.mutationDetail(ctx, userID, "already following"))
		}
		return err
	}

	if err := s.graph.AddFollower(ctx, followID, userID, since); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return fmt.Errorf("%w: %s", domain.ErrFollowersUpdateFailed,
				s.mutationDetail(ctx, followID, "follower edge already present"))
		}
		return err
	}

	return nil
}

// Unfollow removes the edge userID -> unfollowID, outgoing side first, with
// the same half-edge caveat as Follow.
func (s *graphService) Unfollow(ctx context.Context, userID, unfollowID string) error {
	if err := s.validatePair(userID, unfollowID); err != nil {
		return err
	}

	if err := s.graph.RemoveFollowing(ctx, userID, unfollowID); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return fmt.Errorf("%w: %s", domain.ErrUnfollowingUpdateFailed,
				s.mutationDetail(ctx, userID, "not following"))
		}
		return err
	}

	if err := s.graph.RemoveFollower(ctx, unfollowID, userID); err != nil {
		if errors.Is(err, repository.ErrNoMatch) {
			return fmt.Errorf("%w: %s", domain.ErrUnfollowersUpdateFailed,
				s.mutationDetail(ctx, unfollowID, "follower edge not present"))
		}
		return err
	}

	return nil
}

func (s *graphService) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	views, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []domain.UserView{}
	}
	return views, nil
}

// DailyFollowerCounts buckets the user's incoming edges by the UTC calendar
// date of their since timestamp, ascending. A user with no followers (or no
// record at all) yields an empty sequence.
func (s *graphService) DailyFollowerCounts(ctx context.Context, userID string) ([]domain.DailyCount, error) {
	if err := validate.UserID(userID); err != nil {
		return nil, err
	}

	edges, err := s.graph.FollowerEdges(ctx, userID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]int, len(edges))
	for _, e := range edges {
		buckets[e.Since.UTC().Format("2006-01-02")]++
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	counts := make([]domain.DailyCount, 0, len(dates))
	for _, date := range dates {
		counts = append(counts, domain.DailyCount{Date: date, Count: buckets[date]})
	}
	return counts, nil
}

// MutualFollowers intersects the follower-id sets of both users and
// resolves the intersection to peers. An empty intersection is a success.
func (s *graphService) MutualFollowers(ctx context.Context, userID1, userID2 string) ([]domain.Peer, error) {
	if err := s.validatePair(userID1, userID2); err != nil {
		return nil, err
	}

	for _, id := range []string{userID1, userID2} {
		if _, err := s.users.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
			}
			return nil, err
		}
	}

	first, err := s.graph.FollowerIDs(ctx, userID1)
	if err != nil {
		return nil, err
	}
	second, err := s.graph.FollowerIDs(ctx, userID2)
	if err != nil {
		return nil, err
	}

	// hash the smaller set, scan the larger: O(min(n,m)) membership work
	if len(second) < len(first) {
		first, second = second, first
	}
	seen := make(map[string]struct{}, len(first))
	for _, id := range first {
		seen[id] = struct{}{}
	}
	mutual := []string{}
	for _, id := range second {
		if _, ok := seen[id]; ok {
			mutual = append(mutual, id)
		}
	}

	return s.users.ResolvePeers(ctx, mutual)
}

// Reconcile completes or drops half-edges left behind by a failed second
// mutation step. A missing mirror side is re-inserted with the original
// since timestamp; when the mirror's owner no longer resolves to a user the
// surviving side is removed instead.
func (s *graphService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	outgoing, err := s.graph.DanglingFollowings(ctx)
	if err != nil {
		return report, err
	}
	for _, e := range outgoing {
		err := s.graph.AddFollower(ctx, e.FolloweeID, e.FollowerID, e.Since)
		switch {
		case err == nil:
			report.CompletedFollowers++
		case errors.Is(err, repository.ErrNoMatch):
			if s.userMissing(ctx, e.FolloweeID) {
				if err := s.graph.RemoveFollowing(ctx, e.FollowerID, e.FolloweeID); err == nil {
					report.DroppedHalfEdges++
				}
			}
		default:
			return report, err
		}
	}

	incoming, err := s.graph.DanglingFollowers(ctx)
	if err != nil {
		return report, err
	}
	for _, e := range incoming {
		err := s.graph.AddFollowing(ctx, e.FollowerID, e.FolloweeID, e.Since)
		switch {
		case err == nil:
			report.CompletedFollowings++
		case errors.Is(err, repository.ErrNoMatch):
			if s.userMissing(ctx, e.FollowerID) {
				if err := s.graph.RemoveFollower(ctx, e.FolloweeID, e.FollowerID); err == nil {
					report.DroppedHalfEdges++
				}
			}
		default:
			return report, err
		}
	}

	return report, nil
}

func (s *graphService) validatePair(a, b string) error {
	if err := validate.UserID(a); err != nil {
		return err
	}
	if err := validate.UserID(b); err != nil {
		return err
	}
	return validate.Distinct(a, b)
}

// mutationDetail tells a failed conditional write's two possible causes
// apart after the fact: the owning record is missing, or the edge was
// already in the state the condition excluded.
func (s *graphService) mutationDetail(ctx context.Context, ownerID, edgeState string) string {
	if s.userMissing(ctx, ownerID) {
		return fmt.Sprintf("no user with id %s", ownerID)
	}
	return edgeState
}

func (s *graphService) userMissing(ctx context.Context, id string) bool {
	_, err := s.users.GetByID(ctx, id)
	return errors.Is(err, repository.ErrNotFound)
}
