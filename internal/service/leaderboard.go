package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type LeaderboardEntry struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	Score      int    `json:"score"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Date       string `json:"date"`
}

// betterThan reports whether the entry beats old for the same user.
func (e LeaderboardEntry) betterThan(old LeaderboardEntry) bool {
	return e.Percentage > old.Percentage ||
		(e.Percentage == old.Percentage && e.Score > old.Score)
}

func newLeaderboardEntry(userID int64, username, firstName string, score, total int) LeaderboardEntry {
	return LeaderboardEntry{
		UserID:     userID,
		Username:   username,
		FirstName:  firstName,
		Score:      score,
		Total:      total,
		Percentage: (score * 100) / total,
		Date:       time.Now().Format("02.01.2006 15:04"),
	}
}

func sortEntries(entries []LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Percentage == entries[j].Percentage {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Percentage > entries[j].Percentage
	})
}

// LeaderboardService records each user's best quiz result.
type LeaderboardService interface {
	// AddEntry records a result and reports whether it became the
	// user's new best.
	AddEntry(userID int64, username, firstName string, score, total int) bool
	GetTop(limit int) []LeaderboardEntry
	GetUserPosition(userID int64) (int, *LeaderboardEntry)
}

// NewLeaderboardService picks a backend from configuration: Redis when
// a URL is given, GitHub Gist when gist credentials are given, and an
// in-memory fallback otherwise (results lost on restart).
func NewLeaderboardService(redisURL, gistID, githubToken string) LeaderboardService {
	if redisURL != "" {
		svc, err := NewRedisLeaderboardService(redisURL)
		if err == nil {
			log.Info().Msg("using redis leaderboard")
			return svc
		}
		log.Warn().Err(err).Msg("redis leaderboard unavailable, falling back")
	}
	if gistID != "" && githubToken != "" {
		log.Info().Msg("using gist leaderboard")
		return NewGistLeaderboardService(gistID, githubToken)
	}
	log.Info().Msg("using in-memory leaderboard")
	return NewMemoryLeaderboardService()
}

// ─── In-memory backend ───────────────────────────────────────────────

type MemoryLeaderboardService struct {
	mu      sync.RWMutex
	entries []LeaderboardEntry
}

func NewMemoryLeaderboardService() *MemoryLeaderboardService {
	return &MemoryLeaderboardService{}
}

func (ms *MemoryLeaderboardService) AddEntry(userID int64, username, firstName string, score, total int) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	entry := newLeaderboardEntry(userID, username, firstName, score, total)
	for i, old := range ms.entries {
		if old.UserID == userID {
			if entry.betterThan(old) {
				ms.entries[i] = entry
				return true
			}
			return false
		}
	}
	ms.entries = append(ms.entries, entry)
	return true
}

func (ms *MemoryLeaderboardService) GetTop(limit int) []LeaderboardEntry {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	sorted := make([]LeaderboardEntry, len(ms.entries))
	copy(sorted, ms.entries)
	sortEntries(sorted)

	if limit > len(sorted) {
		limit = len(sorted)
	}
	return sorted[:limit]
}

func (ms *MemoryLeaderboardService) GetUserPosition(userID int64) (int, *LeaderboardEntry) {
	top := ms.GetTop(len(ms.entries))
	return findPosition(top, userID)
}

// ─── GitHub Gist backend ─────────────────────────────────────────────

// GistLeaderboardService keeps the leaderboard as a JSON file in a
// GitHub Gist, so results survive restarts without a database.
type GistLeaderboardService struct {
	gistID      string
	githubToken string
	filename    string
}

func NewGistLeaderboardService(gistID, githubToken string) *GistLeaderboardService {
	return &GistLeaderboardService{
		gistID:      gistID,
		githubToken: githubToken,
		filename:    "leaderboard.json",
	}
}

func (gs *GistLeaderboardService) load() ([]LeaderboardEntry, error) {
	url := fmt.Sprintf("https://api.github.com/gists/%s", gs.gistID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "token "+gs.githubToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var gist struct {
		Files map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if err := json.Unmarshal(body, &gist); err != nil {
		return nil, err
	}

	var entries []LeaderboardEntry
	if file, ok := gist.Files[gs.filename]; ok && file.Content != "" {
		if err := json.Unmarshal([]byte(file.Content), &entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (gs *GistLeaderboardService) save(entries []LeaderboardEntry) error {
	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	payload, _ := json.Marshal(map[string]any{
		"files": map[string]any{
			gs.filename: map[string]any{"content": string(content)},
		},
	})

	url := fmt.Sprintf("https://api.github.com/gists/%s", gs.gistID)
	req, err := http.NewRequest(http.MethodPatch, url, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "token "+gs.githubToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
	return nil
}

func (gs *GistLeaderboardService) AddEntry(userID int64, username, firstName string, score, total int) bool {
	entries, err := gs.load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load leaderboard gist")
		return false
	}

	entry := newLeaderboardEntry(userID, username, firstName, score, total)
	improved := true
	found := false
	for i, old := range entries {
		if old.UserID == userID {
			found = true
			if entry.betterThan(old) {
				entries[i] = entry
			} else {
				improved = false
			}
			break
		}
	}
	if !found {
		entries = append(entries, entry)
	}

	if err := gs.save(entries); err != nil {
		log.Error().Err(err).Msg("failed to save leaderboard gist")
		return false
	}
	return improved
}

func (gs *GistLeaderboardService) GetTop(limit int) []LeaderboardEntry {
	entries, err := gs.load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load leaderboard gist")
		return nil
	}

	sortEntries(entries)
	if limit > len(entries) {
		limit = len(entries)
	}
	return entries[:limit]
}

func (gs *GistLeaderboardService) GetUserPosition(userID int64) (int, *LeaderboardEntry) {
	entries, err := gs.load()
	if err != nil {
		return -1, nil
	}
	sortEntries(entries)
	return findPosition(entries, userID)
}

// ─── Redis backend ───────────────────────────────────────────────────

const redisLeaderboardKey = "subjectquiz:leaderboard"

// RedisLeaderboardService keeps one JSON entry per user in a Redis
// hash keyed by user id.
type RedisLeaderboardService struct {
	client *redis.Client
}

func NewRedisLeaderboardService(url string) (*RedisLeaderboardService, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisLeaderboardService{client: client}, nil
}

func (rs *RedisLeaderboardService) AddEntry(userID int64, username, firstName string, score, total int) bool {
	ctx := context.Background()
	field := strconv.FormatInt(userID, 10)
	entry := newLeaderboardEntry(userID, username, firstName, score, total)

	raw, err := rs.client.HGet(ctx, redisLeaderboardKey, field).Result()
	if err == nil {
		var old LeaderboardEntry
		if json.Unmarshal([]byte(raw), &old) == nil && !entry.betterThan(old) {
			return false
		}
	} else if err != redis.Nil {
		log.Error().Err(err).Msg("failed to read leaderboard entry from redis")
		return false
	}

	data, _ := json.Marshal(entry)
	if err := rs.client.HSet(ctx, redisLeaderboardKey, field, data).Err(); err != nil {
		log.Error().Err(err).Msg("failed to write leaderboard entry to redis")
		return false
	}
	return true
}

func (rs *RedisLeaderboardService) loadAll() []LeaderboardEntry {
	raw, err := rs.client.HGetAll(context.Background(), redisLeaderboardKey).Result()
	if err != nil {
		log.Error().Err(err).Msg("failed to load leaderboard from redis")
		return nil
	}

	entries := make([]LeaderboardEntry, 0, len(raw))
	for _, data := range raw {
		var entry LeaderboardEntry
		if json.Unmarshal([]byte(data), &entry) == nil {
			entries = append(entries, entry)
		}
	}
	sortEntries(entries)
	return entries
}

func (rs *RedisLeaderboardService) GetTop(limit int) []LeaderboardEntry {
	entries := rs.loadAll()
	if limit > len(entries) {
		limit = len(entries)
	}
	return entries[:limit]
}

func (rs *RedisLeaderboardService) GetUserPosition(userID int64) (int, *LeaderboardEntry) {
	return findPosition(rs.loadAll(), userID)
}

func findPosition(sorted []LeaderboardEntry, userID int64) (int, *LeaderboardEntry) {
	for i, entry := range sorted {
		if entry.UserID == userID {
			return i + 1, &entry
		}
	}
	return -1, nil
}
