// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package peers

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"

	"github.com/Wetende/mind-digest-sub001/internal/recommend"
	"github.com/Wetende/mind-digest-sub001/internal/recommend/patterns"
)

var _ recommend.PeerDirectory = (*QdrantDirectory)(nil)

// fakeQdrant stores points in memory and answers queries with exact cosine
// similarity.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]bool
	points      map[string]*qdrant.PointStruct
	queryErr    error
	lastQuery   *qdrant.QueryPoints
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{collections: map[string]bool{}, points: map[string]*qdrant.PointStruct{}}
}

func (f *fakeQdrant) CollectionExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[name], nil
}

func (f *fakeQdrant) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[req.GetCollectionName()] = true
	return nil
}

func (f *fakeQdrant) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range req.GetPoints() {
		f.points[p.GetId().GetUuid()] = p
	}
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) Get(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*qdrant.RetrievedPoint
	for _, id := range req.GetIds() {
		p, ok := f.points[id.GetUuid()]
		if !ok {
			continue
		}
		out = append(out, &qdrant.RetrievedPoint{
			Id:      p.GetId(),
			Payload: p.GetPayload(),
			Vectors: &qdrant.VectorsOutput{VectorsOptions: &qdrant.VectorsOutput_Vector{
				Vector: &qdrant.VectorOutput{Data: p.GetVectors().GetVector().GetData()},
			}},
		})
	}
	return out, nil
}

func (f *fakeQdrant) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = req
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	query := req.GetQuery().GetNearest().GetDense().GetData()
	var out []*qdrant.ScoredPoint
	for _, p := range f.points {
		score := cosine(query, p.GetVectors().GetVector().GetData())
		if score < req.GetScoreThreshold() {
			continue
		}
		out = append(out, &qdrant.ScoredPoint{Id: p.GetId(), Payload: p.GetPayload(), Score: score})
	}
	// Best first.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Score > out[j-1].Score; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if n := int(req.GetLimit()); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (f *fakeQdrant) Close() error { return nil }

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func setupDirectory(t *testing.T, fake *fakeQdrant) *QdrantDirectory {
	t.Helper()
	d := newDirectory(fake, Options{Collection: "peers-test", MinScore: 0.5}, zerolog.Nop())
	if err := d.ensureCollection(context.Background()); err != nil {
		t.Fatalf("ensureCollection() error = %v", err)
	}
	return d
}

func TestQdrantDirectory_EnsureCollection(t *testing.T) {
	fake := newFakeQdrant()
	setupDirectory(t, fake)
	if !fake.collections["peers-test"] {
		t.Error("collection should have been created")
	}
	// Second call is a no-op.
	setupDirectory(t, fake)
}

func TestQdrantDirectory_FindMatches(t *testing.T) {
	fake := newFakeQdrant()
	d := setupDirectory(t, fake)
	ctx := context.Background()

	profiles := []Profile{
		{UserID: "me", DisplayName: "Me", Interests: []string{"Running", "music"}, Vector: []float32{1, 0, 0, 0, 0, 0}},
		{UserID: "close", DisplayName: "Close", Interests: []string{"running"}, Vector: []float32{0.9, 0.1, 0, 0, 0, 0}},
		{UserID: "near", DisplayName: "Near", Vector: []float32{0.7, 0.7, 0, 0, 0, 0}},
		{UserID: "far", DisplayName: "Far", Vector: []float32{0, 0, 1, 0, 0, 0}},
	}
	for _, p := range profiles {
		if err := d.UpsertProfile(ctx, p); err != nil {
			t.Fatalf("UpsertProfile(%s) error = %v", p.UserID, err)
		}
	}

	t.Run("nearest first without self", func(t *testing.T) {
		got, err := d.FindMatches(ctx, "me", 5)
		if err != nil {
			t.Fatalf("FindMatches() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d matches, want 2 (far is below MinScore): %+v", len(got), got)
		}
		if got[0].ID != "close" || got[1].ID != "near" {
			t.Errorf("order = %s, %s; want close, near", got[0].ID, got[1].ID)
		}
		if len(got[0].SharedInterests) != 1 || got[0].SharedInterests[0] != "running" {
			t.Errorf("SharedInterests = %v, want [running]", got[0].SharedInterests)
		}
		if got[0].SuggestedInteraction != "Start a conversation about running" {
			t.Errorf("SuggestedInteraction = %q", got[0].SuggestedInteraction)
		}
		if got[0].CompatibilityScore <= got[1].CompatibilityScore {
			t.Errorf("shared interests should raise compatibility: %v <= %v", got[0].CompatibilityScore, got[1].CompatibilityScore)
		}
		for _, c := range got {
			if c.CompatibilityScore < 0 || c.CompatibilityScore > 1 {
				t.Errorf("%s CompatibilityScore = %v outside [0,1]", c.ID, c.CompatibilityScore)
			}
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		got, err := d.FindMatches(ctx, "me", 1)
		if err != nil {
			t.Fatalf("FindMatches() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "close" {
			t.Errorf("got %+v, want only close", got)
		}
		if fake.lastQuery.GetLimit() != 2 {
			t.Errorf("query limit = %d, want limit+1", fake.lastQuery.GetLimit())
		}
	})

	t.Run("unknown user has no matches", func(t *testing.T) {
		got, err := d.FindMatches(ctx, "stranger", 5)
		if err != nil {
			t.Fatalf("FindMatches() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d matches, want 0", len(got))
		}
	})

	t.Run("query error surfaces", func(t *testing.T) {
		fake.mu.Lock()
		fake.queryErr = errors.New("unavailable")
		fake.mu.Unlock()
		defer func() {
			fake.mu.Lock()
			fake.queryErr = nil
			fake.mu.Unlock()
		}()

		if _, err := d.FindMatches(ctx, "me", 5); err == nil {
			t.Error("FindMatches() error = nil, want query error")
		}
	})
}

func TestQdrantDirectory_UpsertProfileValidation(t *testing.T) {
	d := setupDirectory(t, newFakeQdrant())

	tests := []struct {
		name string
		p    Profile
	}{
		{name: "empty user", p: Profile{Vector: make([]float32, VectorSize)}},
		{name: "short vector", p: Profile{UserID: "u1", Vector: []float32{1, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.UpsertProfile(context.Background(), tt.p); !errors.Is(err, ErrInvalidProfile) {
				t.Errorf("UpsertProfile() error = %v, want ErrInvalidProfile", err)
			}
		})
	}
}

func TestPointID_Stable(t *testing.T) {
	a := PointID("user-1").GetUuid()
	b := PointID("user-1").GetUuid()
	c := PointID("user-2").GetUuid()
	if a != b {
		t.Errorf("PointID not stable: %s != %s", a, b)
	}
	if a == c {
		t.Error("different users share a point ID")
	}
}

func TestBehaviorVector(t *testing.T) {
	t.Run("insufficient data sits at midpoints", func(t *testing.T) {
		a := patterns.DefaultAnalysis()
		v := BehaviorVector(&a)
		if len(v) != VectorSize {
			t.Fatalf("len = %d, want %d", len(v), VectorSize)
		}
		if v[0] != 0.5 || v[1] != 0.5 {
			t.Errorf("trend components = %v, %v; want 0.5", v[0], v[1])
		}
	})

	t.Run("components within unit range", func(t *testing.T) {
		base := time.Date(2026, time.February, 2, 9, 0, 0, 0, time.UTC)
		var history []patterns.MoodEntry
		for i := 0; i < 21; i++ {
			history = append(history, patterns.MoodEntry{Mood: 3 + i%7, Timestamp: base.AddDate(0, 0, i)})
		}
		a := patterns.AnalyzeMoodPatterns(history, nil)
		for i, f := range BehaviorVector(&a) {
			if f < 0 || f > 1 {
				t.Errorf("component %d = %v outside [0,1]", i, f)
			}
		}
	})
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b []string
		want float64
	}{
		{a: nil, b: nil, want: 0},
		{a: []string{"Art"}, b: []string{"art"}, want: 1},
		{a: []string{"art", "music"}, b: []string{"music", "yoga"}, want: 1.0 / 3.0},
	}
	for _, tt := range tests {
		if got := jaccard(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("jaccard(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
