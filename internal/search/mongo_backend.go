package search

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection = "accounts"
	postsCollection    = "posts"

	// prefixRunes is how much of each query term the candidate regex pins;
	// the rest of the term is left to fuzzy scoring.
	prefixRunes = 3
)

// MongoBackend stores search documents in two MongoDB collections with
// weighted text indexes.
type MongoBackend struct {
	accounts *mongo.Collection
	posts    *mongo.Collection
}

// NewMongoBackend creates a MongoBackend over db.
func NewMongoBackend(db *mongo.Database) *MongoBackend {
	return &MongoBackend{
		accounts: db.Collection(accountsCollection),
		posts:    db.Collection(postsCollection),
	}
}

// EnsureIndexes creates the text and ordering indexes. It is idempotent.
func (b *MongoBackend) EnsureIndexes(ctx context.Context) error {
	_, err := b.accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "name", Value: "text"}, {Key: "handle", Value: "text"}, {Key: "bio", Value: "text"}},
			Options: options.Index().
				SetName("accounts_text").
				SetDefaultLanguage("none").
				SetWeights(bson.D{{Key: "name", Value: 4}, {Key: "handle", Value: 4}, {Key: "bio", Value: 2}}),
		},
		{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("accounts_created_at")},
	})
	if err != nil {
		return errors.Wrap(err, "create account indexes")
	}

	_, err = b.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "content", Value: "text"}, {Key: "author_name", Value: "text"}, {Key: "author_handle", Value: "text"}},
			Options: options.Index().
				SetName("posts_text").
				SetDefaultLanguage("none").
				SetWeights(bson.D{{Key: "content", Value: 3}, {Key: "author_name", Value: 2}, {Key: "author_handle", Value: 2}}),
		},
		{Keys: bson.D{{Key: "author_id", Value: 1}}, Options: options.Index().SetName("posts_author_id")},
		{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("posts_created_at")},
	})
	return errors.Wrap(err, "create post indexes")
}

func (b *MongoBackend) UpsertAccounts(ctx context.Context, docs []AccountDocument) error {
	if len(docs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true))
	}
	_, err := b.accounts.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return errors.Wrap(err, "upsert accounts")
}

func (b *MongoBackend) UpsertPosts(ctx context.Context, docs []PostDocument) error {
	if len(docs) == 0 {
		return nil
	}
	writes := make([]mongo.WriteModel, 0, len(docs))
	for _, d := range docs {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": d.ID}).
			SetReplacement(d).
			SetUpsert(true))
	}
	_, err := b.posts.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return errors.Wrap(err, "upsert posts")
}

func (b *MongoBackend) DeleteAccount(ctx context.Context, id string) error {
	_, err := b.accounts.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "delete account document")
}

func (b *MongoBackend) DeletePost(ctx context.Context, id string) error {
	_, err := b.posts.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "delete post document")
}

func (b *MongoBackend) FindAccounts(ctx context.Context, query string, terms []string, limit int) ([]AccountHit, error) {
	var textHits, prefixHits []AccountHit
	if err := findText(ctx, b.accounts, query, limit, &textHits); err != nil {
		return nil, errors.Wrap(err, "text search accounts")
	}
	if err := findPrefix(ctx, b.accounts, []string{"name", "handle", "bio"}, terms, limit, &prefixHits); err != nil {
		return nil, errors.Wrap(err, "prefix search accounts")
	}

	seen := make(map[string]bool, len(textHits))
	for _, h := range textHits {
		seen[h.ID] = true
	}
	for _, h := range prefixHits {
		if !seen[h.ID] {
			textHits = append(textHits, h)
			seen[h.ID] = true
		}
	}
	return textHits, nil
}

func (b *MongoBackend) FindPosts(ctx context.Context, query string, terms []string, limit int) ([]PostHit, error) {
	var textHits, prefixHits []PostHit
	if err := findText(ctx, b.posts, query, limit, &textHits); err != nil {
		return nil, errors.Wrap(err, "text search posts")
	}
	if err := findPrefix(ctx, b.posts, []string{"content", "author_name", "author_handle"}, terms, limit, &prefixHits); err != nil {
		return nil, errors.Wrap(err, "prefix search posts")
	}

	seen := make(map[string]bool, len(textHits))
	for _, h := range textHits {
		seen[h.ID] = true
	}
	for _, h := range prefixHits {
		if !seen[h.ID] {
			textHits = append(textHits, h)
			seen[h.ID] = true
		}
	}
	return textHits, nil
}

// findText runs a $text query sorted by textScore.
func findText(ctx context.Context, coll *mongo.Collection, query string, limit int, out interface{}) error {
	score := bson.M{"$meta": "textScore"}
	opts := options.Find().
		SetProjection(bson.M{"score": score}).
		SetSort(bson.D{{Key: "score", Value: score}}).
		SetLimit(int64(limit))
	cursor, err := coll.Find(ctx, bson.M{"$text": bson.M{"$search": query}}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

// findPrefix matches documents where any field has a word starting with the
// leading runes of any term. It catches typos $text cannot.
func findPrefix(ctx context.Context, coll *mongo.Collection, fields, terms []string, limit int, out interface{}) error {
	pattern := prefixPattern(terms)
	if pattern == "" {
		return nil
	}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: primitive.Regex{Pattern: pattern, Options: "i"}})
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	cursor, err := coll.Find(ctx, bson.M{"$or": or}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}

func prefixPattern(terms []string) string {
	alts := make([]string, 0, len(terms))
	for _, t := range terms {
		r := []rune(t)
		if len(r) > prefixRunes {
			r = r[:prefixRunes]
		}
		if len(r) == 0 {
			continue
		}
		alts = append(alts, regexp.QuoteMeta(string(r)))
	}
	if len(alts) == 0 {
		return ""
	}
	return `\b(?:` + strings.Join(alts, "|") + `)`
}
