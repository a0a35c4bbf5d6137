package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/devconnect/internal/model"
)

// postsCollection は投稿ドキュメントを格納するコレクション名。
const postsCollection = "posts"

// MongoPostRepo はMongoDBを使用した投稿リポジトリ。
// 投稿は likes / comments を埋め込んだ単一ドキュメントとして保存され、
// 更新はversionフィールドをキーとした条件付き置き換えで行う。
type MongoPostRepo struct {
	coll *mongo.Collection
}

// NewMongoPostRepo はMongoPostRepoを生成する。
func NewMongoPostRepo(db *mongo.Database) *MongoPostRepo {
	return &MongoPostRepo{coll: db.Collection(postsCollection)}
}

// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
func (r *MongoPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}
	return post, nil
}

// ListAll は全投稿を作成日時の降順で返す。
func (r *MongoPostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var posts []*model.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

// Create は投稿を作成する。
func (r *MongoPostRepo) Create(ctx context.Context, post *model.Post) error {
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// Update は投稿を条件付きで更新する。
// post.Versionを読み込み時のバージョンとして照合し、一致した場合のみ
// バージョンをインクリメントしてドキュメント全体を置き換える。
// 照合に失敗した場合はErrVersionConflictを返す。
// ReplaceOneは単一ドキュメントに対してアトミックであり、
// 並行するload-modify-saveサイクルのうち1つだけが勝つ。
func (r *MongoPostRepo) Update(ctx context.Context, post *model.Post) error {
	loadedVersion := post.Version
	post.Version = loadedVersion + 1

	result, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": post.ID, "version": loadedVersion},
		post,
	)
	if err != nil {
		post.Version = loadedVersion
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.MatchedCount == 0 {
		post.Version = loadedVersion
		return ErrVersionConflict
	}
	return nil
}

// DeleteByID は指定IDの投稿を削除する。
func (r *MongoPostRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

// DeleteByAuthorID は指定ユーザーの全投稿を削除する。
func (r *MongoPostRepo) DeleteByAuthorID(ctx context.Context, authorID string) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"author_id": authorID}); err != nil {
		return fmt.Errorf("failed to delete posts by author: %w", err)
	}
	return nil
}
