// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package peers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/Wetende/mind-digest-sub001/internal/breaker"
	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

// Weights of the compatibility blend.
const (
	behaviorWeight = 0.7
	interestWeight = 0.3
)

// profileNamespace seeds name-based point IDs.
var profileNamespace = uuid.MustParse("6f1d3c0e-5b7a-4c2e-9a41-2d8f0b6e7c15")

// ErrInvalidProfile rejects profiles without a user ID or with a vector of
// the wrong size.
var ErrInvalidProfile = errors.New("peers: invalid profile")

// pointClient is the subset of *qdrant.Client the directory uses.
type pointClient interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// Options configures QdrantDirectory.
type Options struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string

	// MinScore drops neighbours below this cosine similarity.
	MinScore float64
}

// Profile is what the directory stores per user.
type Profile struct {
	UserID      string
	DisplayName string
	Interests   []string
	Vector      []float32
}

// QdrantDirectory implements recommend.PeerDirectory on a Qdrant collection.
type QdrantDirectory struct {
	client     pointClient
	collection string
	minScore   float64
	cb         *gobreaker.CircuitBreaker[interface{}]
	logger     zerolog.Logger
}

// NewQdrantDirectory connects to Qdrant and creates the collection if
// missing.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewQdrantDirectory(ctx context.Context, opts Options, logger zerolog.Logger) (*QdrantDirectory, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   opts.Host,
		Port:   opts.Port,
		APIKey: opts.APIKey,
		UseTLS: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	d := newDirectory(client, opts, logger)
	if err := d.ensureCollection(ctx); err != nil {
		client.Close() //nolint:errcheck
		return nil, err
	}
	return d, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newDirectory(client pointClient, opts Options, logger zerolog.Logger) *QdrantDirectory {
	return &QdrantDirectory{
		client:     client,
		collection: opts.Collection,
		minScore:   opts.MinScore,
		cb:         breaker.New(breaker.DefaultConfig("qdrant"), logger),
		logger:     logger.With().Str("component", "peer-directory").Str("collection", opts.Collection).Logger(),
	}
}

func (d *QdrantDirectory) ensureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", d.collection, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: d.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(VectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", d.collection, err)
	}
	d.logger.Info().Msg("Created Qdrant collection")
	return nil
}

// UpsertProfile stores or replaces a user's profile.
func (d *QdrantDirectory) UpsertProfile(ctx context.Context, p Profile) error {
	if p.UserID == "" || len(p.Vector) != VectorSize {
		return fmt.Errorf("%w: user %q, vector size %d", ErrInvalidProfile, p.UserID, len(p.Vector))
	}

	payload := map[string]*qdrant.Value{
		"user_id":      stringValue(p.UserID),
		"display_name": stringValue(p.DisplayName),
	}
	if len(p.Interests) > 0 {
		payload["interests"] = stringListValue(p.Interests)
	}

	_, err := breaker.Execute(d.cb, func() (interface{}, error) {
		return d.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: d.collection,
			Points: []*qdrant.PointStruct{{
				Id:      PointID(p.UserID),
				Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: p.Vector}}},
				Payload: payload,
			}},
		})
	})
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// FindMatches returns up to limit peers nearest to the user's behavior
// vector, best first. A user without a stored profile has no matches.
func (d *QdrantDirectory) FindMatches(ctx context.Context, userID string, limit int) ([]recommend.PeerCandidate, error) {
	if limit <= 0 {
		return nil, nil
	}

	self, err := d.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if self == nil {
		d.logger.Debug().Str("user_id", userID).Msg("No peer profile stored")
		return nil, nil
	}

	// One extra result covers the user's own point.
	res, err := breaker.Execute(d.cb, func() (interface{}, error) {
		return d.client.Query(ctx, &qdrant.QueryPoints{
			CollectionName: d.collection,
			Query:          qdrant.NewQuery(self.Vector...),
			Limit:          qdrant.PtrOf(uint64(limit + 1)),
			WithPayload:    qdrant.NewWithPayload(true),
			ScoreThreshold: qdrant.PtrOf(float32(d.minScore)),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("query peers for %s: %w", userID, err)
	}
	points, _ := res.([]*qdrant.ScoredPoint)

	matches := make([]recommend.PeerCandidate, 0, len(points))
	for _, pt := range points {
		payload := pt.GetPayload()
		peerID := payloadString(payload, "user_id")
		if peerID == "" || peerID == userID {
			continue
		}
		matches = append(matches, candidate(self, peerID, payload, float64(pt.GetScore())))
		if len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// profile loads the user's stored point, or nil when absent.
func (d *QdrantDirectory) profile(ctx context.Context, userID string) (*Profile, error) {
	res, err := breaker.Execute(d.cb, func() (interface{}, error) {
		return d.client.Get(ctx, &qdrant.GetPoints{
			CollectionName: d.collection,
			Ids:            []*qdrant.PointId{PointID(userID)},
			WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: true}},
			WithVectors:    &qdrant.WithVectorsSelector{SelectorOptions: &qdrant.WithVectorsSelector_Enable{Enable: true}},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}
	points, _ := res.([]*qdrant.RetrievedPoint)
	if len(points) == 0 {
		return nil, nil
	}

	pt := points[0]
	var vec []float32
	if vectors := pt.GetVectors(); vectors != nil {
		if v := vectors.GetVector(); v != nil {
			vec = v.GetData()
		}
	}
	if len(vec) == 0 {
		return nil, nil
	}

	payload := pt.GetPayload()
	return &Profile{
		UserID:      userID,
		DisplayName: payloadString(payload, "display_name"),
		Interests:   payloadStrings(payload, "interests"),
		Vector:      vec,
	}, nil
}

// Close closes the Qdrant connection.
func (d *QdrantDirectory) Close() error {
	return d.client.Close()
}

func candidate(self *Profile, peerID string, payload map[string]*qdrant.Value, similarity float64) recommend.PeerCandidate {
	interests := payloadStrings(payload, "interests")
	shared := sharedInterests(self.Interests, interests)
	behavioral := recommend.ClampScore(similarity)

	c := recommend.PeerCandidate{
		ID:                   peerID,
		DisplayName:          payloadString(payload, "display_name"),
		BehavioralSimilarity: behavioral,
		CompatibilityScore:   recommend.ClampScore(behaviorWeight*behavioral + interestWeight*jaccard(self.Interests, interests)),
		SharedInterests:      shared,
		Reason:               "Similar mood patterns",
		SuggestedInteraction: "Send a friendly hello",
	}
	if len(shared) > 0 {
		c.Reason = "Similar mood patterns and shared interests"
		c.SuggestedInteraction = "Start a conversation about " + strings.ToLower(shared[0])
	}
	return c
}

// PointID maps a user ID to its Qdrant point ID.
func PointID(userID string) *qdrant.PointId {
	id := uuid.NewSHA1(profileNamespace, []byte(userID)).String()
	return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: id}}
}

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func stringListValue(ss []string) *qdrant.Value {
	values := make([]*qdrant.Value, len(ss))
	for i, s := range ss {
		values[i] = stringValue(s)
	}
	return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadStrings(payload map[string]*qdrant.Value, key string) []string {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		if s := item.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
