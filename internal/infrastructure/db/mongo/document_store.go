package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rjtc/pms-sync/internal/core/ports"
)

// DocumentStore implements ports.RemoteStore on MongoDB.
//
// A hierarchical path "Tasks/t1" addresses document t1 in collection Tasks;
// any further segments ("Users/u1/tasks") address a nested field inside the
// document. Writes below the document level become dotted $set keys, so
// "Users/u1/tasks" + {t1: true} updates only users.tasks.t1.
type DocumentStore struct {
	db *mongo.Database
}

func NewDocumentStore(db *mongo.Database) *DocumentStore {
	return &DocumentStore{db: db}
}

// ReadOnce reads the record at path. An absent document, or an absent nested
// field, yields (nil, nil).
func (s *DocumentStore) ReadOnce(ctx context.Context, path string) (ports.Record, error) {
	coll, id, prefix, err := splitPath(path)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc bson.M
	if err := s.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	delete(doc, "_id")

	v := any(doc)
	for _, seg := range prefix {
		rec, ok := normalizeValue(v).(map[string]any)
		if !ok {
			return nil, nil
		}
		v, ok = rec[seg]
		if !ok {
			return nil, nil
		}
	}

	rec, ok := normalizeValue(v).(map[string]any)
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// Write upserts the named fields at path.
func (s *DocumentStore) Write(ctx context.Context, path string, fields ports.Record) error {
	coll, id, prefix, err := splitPath(path)
	if err != nil {
		return err
	}

	set := bson.M{}
	for k, v := range fields {
		key := k
		if len(prefix) > 0 {
			key = strings.Join(prefix, ".") + "." + k
		}
		set[key] = v
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = s.db.Collection(coll).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Delete removes the document at path, or unsets a nested field when the
// path reaches below the document level.
func (s *DocumentStore) Delete(ctx context.Context, path string) error {
	coll, id, prefix, err := splitPath(path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if len(prefix) == 0 {
		if _, err := s.db.Collection(coll).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			return fmt.Errorf("delete %s: %w", path, err)
		}
		return nil
	}

	unset := bson.M{strings.Join(prefix, "."): ""}
	_, err = s.db.Collection(coll).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$unset": unset})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// GenerateKey produces a globally unique document id. ObjectIDs are unique
// across collections, so the collection argument only matters to callers.
func (s *DocumentStore) GenerateKey(_ context.Context, _ string) (string, error) {
	return primitive.NewObjectID().Hex(), nil
}

// splitPath parses "Collection/docID[/nested/...]" into its parts.
func splitPath(path string) (coll, id string, prefix []string, err error) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", nil, fmt.Errorf("malformed store path %q", path)
	}
	return parts[0], parts[1], parts[2:], nil
}

// normalizeValue converts bson container types to their plain Go shapes so
// the core can type-assert map[string]any without knowing about bson.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeValue(val)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeValue(val)
		}
		return out
	default:
		return v
	}
}
