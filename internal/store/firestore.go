package store

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client is the firestore-backed Store implementation. It is a long-lived,
// process-wide handle constructed once in cmd/* and injected into services;
// it holds no per-request state.
type Client struct {
	fs *firestore.Client
}

// Connect creates a firestore client for the given project. credentialsFile
// may be empty, in which case application default credentials are used.
func Connect(ctx context.Context, projectID, credentialsFile string) (*Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("missing firestore project id")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	fs, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}

	log.Printf("✓ Connected to Firestore (project: %s)", projectID)
	return &Client{fs: fs}, nil
}

// Close releases the underlying firestore client.
func (c *Client) Close() error {
	return c.fs.Close()
}

func (c *Client) Create(ctx context.Context, collection string, data map[string]interface{}, id string) (string, error) {
	doc := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		doc[k] = v
	}
	now := Now()
	if _, ok := doc["created_at"]; !ok {
		doc["created_at"] = now
	}
	doc["updated_at"] = now

	ref := c.fs.Collection(collection).Doc(id)
	if id == "" {
		ref = c.fs.Collection(collection).NewDoc()
	}

	if _, err := ref.Set(ctx, doc); err != nil {
		log.Printf("[ERROR] store: create in %s failed: %v", collection, err)
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (c *Client) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	snap, err := c.fs.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if snap != nil && !snap.Exists() {
			return nil, nil
		}
		log.Printf("[ERROR] store: get %s/%s failed: %v", collection, id, err)
		return nil, nil
	}
	if !snap.Exists() {
		return nil, nil
	}
	data := snap.Data()
	data["id"] = snap.Ref.ID
	return data, nil
}

func (c *Client) Update(ctx context.Context, collection, id string, partial map[string]interface{}) bool {
	doc := make(map[string]interface{}, len(partial)+1)
	for k, v := range partial {
		doc[k] = v
	}
	doc["updated_at"] = Now()

	if _, err := c.fs.Collection(collection).Doc(id).Set(ctx, doc, firestore.MergeAll); err != nil {
		log.Printf("[ERROR] store: update %s/%s failed: %v", collection, id, err)
		return false
	}
	return true
}

func (c *Client) Delete(ctx context.Context, collection, id string) bool {
	if _, err := c.fs.Collection(collection).Doc(id).Delete(ctx); err != nil {
		log.Printf("[ERROR] store: delete %s/%s failed: %v", collection, id, err)
		return false
	}
	return true
}

func (c *Client) FindByField(ctx context.Context, collection, field string, value interface{}) (map[string]interface{}, error) {
	// First match only; ordering among duplicates is whatever the store
	// returns by default.
	iter := c.fs.Collection(collection).Where(field, "==", value).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		log.Printf("[ERROR] store: find %s where %s == %v failed: %v", collection, field, value, err)
		return nil, nil
	}
	data := snap.Data()
	data["id"] = snap.Ref.ID
	return data, nil
}

func (c *Client) QueryCollection(ctx context.Context, collection string, conditions []Condition) []map[string]interface{} {
	q := c.fs.Collection(collection).Query
	for _, cond := range conditions {
		q = q.Where(cond.Field, cond.Op, cond.Value)
	}

	results := []map[string]interface{}{}
	iter := q.Documents(ctx)
	defer iter.Stop()
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("[ERROR] store: query %s failed: %v", collection, err)
			return results
		}
		data := snap.Data()
		data["id"] = snap.Ref.ID
		results = append(results, data)
	}
	return results
}

func (c *Client) Count(ctx context.Context, collection string) int {
	// Keys-only scan; the observed usage (admin stats) operates on small
	// collections.
	count := 0
	iter := c.fs.Collection(collection).Select().Documents(ctx)
	defer iter.Stop()
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			log.Printf("[ERROR] store: count %s failed: %v", collection, err)
			return count
		}
		count++
	}
	return count
}

var _ Store = (*Client)(nil)
