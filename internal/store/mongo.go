package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sujalbistaa/askk/internal/apperr"
	"github.com/sujalbistaa/askk/internal/models"
)

const (
	usersCollection = "users"
	postsCollection = "posts"
	qaCollection    = "qa_pairs"
)

// mongoStore backs the Store contract with MongoDB. Documents use the
// same UUID-string ids as the relational backend, stored in _id.
type mongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func openMongo(ctx context.Context, uri, dbName string) (Store, error) {
	log.Info().Str("database", dbName).Msg("connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperr.Internal("connect to mongodb", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, apperr.Internal("ping mongodb", err)
	}

	db := client.Database(dbName)

	// Lookup-or-insert on users depends on this index being unique.
	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, apperr.Internal("create user index", err)
	}

	return &mongoStore{client: client, db: db}, nil
}

func (s *mongoStore) EnsureUser(ctx context.Context, externalID string) (models.User, error) {
	if externalID == "" {
		externalID = uuid.NewString()
	}

	filter := bson.M{"external_user_id": externalID}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":              uuid.NewString(),
		"external_user_id": externalID,
		"created_at":       time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	err := s.db.Collection(usersCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent upsert on the same external id won the race; its
		// document is authoritative.
		err = s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	}
	if err != nil {
		return models.User{}, apperr.Internal("ensure user", err)
	}
	return user, nil
}

func (s *mongoStore) UserByExternalID(ctx context.Context, externalID string) (models.User, error) {
	var user models.User
	err := s.db.Collection(usersCollection).
		FindOne(ctx, bson.M{"external_user_id": externalID}).
		Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, apperr.Internal("look up user", err)
	}
	return user, nil
}

func (s *mongoStore) CreatePost(ctx context.Context, title, content, ownerID string) (models.Post, error) {
	if strings.TrimSpace(content) == "" {
		return models.Post{}, apperr.Validation("content is required")
	}

	post := models.Post{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(postsCollection).InsertOne(ctx, post); err != nil {
		return models.Post{}, apperr.Internal("create post", err)
	}
	return post, nil
}

func (s *mongoStore) ListPosts(ctx context.Context, ownerID string, page, pageSize int) ([]models.Post, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	coll := s.db.Collection(postsCollection)
	filter := bson.M{"owner_id": ownerID}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("count posts", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperr.Internal("fetch posts", err)
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, 0, apperr.Internal("decode posts", err)
	}
	return posts, total, nil
}

func (s *mongoStore) PostByID(ctx context.Context, id string) (models.Post, error) {
	if err := checkID(id, "post id"); err != nil {
		return models.Post{}, err
	}

	var post models.Post
	err := s.db.Collection(postsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Post{}, apperr.NotFound("post not found")
	}
	if err != nil {
		return models.Post{}, apperr.Internal("fetch post", err)
	}
	return post, nil
}

func (s *mongoStore) DeletePostsByOwner(ctx context.Context, ownerID string) (int64, error) {
	coll := s.db.Collection(postsCollection)

	cursor, err := coll.Find(ctx, bson.M{"owner_id": ownerID},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, apperr.Internal("find posts to delete", err)
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return 0, apperr.Internal("decode posts to delete", err)
	}

	if len(docs) > 0 {
		ids := make([]string, 0, len(docs))
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		if _, err := s.db.Collection(qaCollection).DeleteMany(ctx, bson.M{"post_id": bson.M{"$in": ids}}); err != nil {
			return 0, apperr.Internal("delete qa pairs", err)
		}
	}

	res, err := coll.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, apperr.Internal("delete posts", err)
	}
	return res.DeletedCount, nil
}

func (s *mongoStore) CreateQA(ctx context.Context, question, answer, postID string) (models.QAPair, error) {
	if err := checkID(postID, "post id"); err != nil {
		return models.QAPair{}, err
	}

	qa := models.QAPair{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Collection(qaCollection).InsertOne(ctx, qa); err != nil {
		return models.QAPair{}, apperr.Internal("create qa pair", err)
	}
	return qa, nil
}

func (s *mongoStore) ListQA(ctx context.Context, postID string) ([]models.QAPair, error) {
	if err := checkID(postID, "post id"); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(qaCollection).Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, apperr.Internal("fetch qa pairs", err)
	}
	defer cursor.Close(ctx)

	var pairs []models.QAPair
	if err := cursor.All(ctx, &pairs); err != nil {
		return nil, apperr.Internal("decode qa pairs", err)
	}
	return pairs, nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
