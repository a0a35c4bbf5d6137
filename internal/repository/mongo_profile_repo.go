package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hitoshi/devconnect/internal/model"
)

// profilesCollection はプロフィールドキュメントを格納するコレクション名。
const profilesCollection = "profiles"

// MongoProfileRepo はMongoDBを使用したプロフィールリポジトリ。
type MongoProfileRepo struct {
	coll *mongo.Collection
}

// NewMongoProfileRepo はMongoProfileRepoを生成する。
func NewMongoProfileRepo(db *mongo.Database) *MongoProfileRepo {
	return &MongoProfileRepo{coll: db.Collection(profilesCollection)}
}

// FindByUserID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *MongoProfileRepo) FindByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	profile := &model.Profile{}
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile by user ID: %w", err)
	}
	return profile, nil
}

// ListAll は全プロフィールを返す。
func (r *MongoProfileRepo) ListAll(ctx context.Context) ([]*model.Profile, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*model.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return profiles, nil
}

// Create はプロフィールを作成する。
func (r *MongoProfileRepo) Create(ctx context.Context, profile *model.Profile) error {
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Update はプロフィールを条件付きで更新する。
// MongoPostRepo.Updateと同じversionキーのcompare-and-swapセマンティクス。
func (r *MongoProfileRepo) Update(ctx context.Context, profile *model.Profile) error {
	loadedVersion := profile.Version
	profile.Version = loadedVersion + 1

	result, err := r.coll.ReplaceOne(ctx,
		bson.M{"_id": profile.ID, "version": loadedVersion},
		profile,
	)
	if err != nil {
		profile.Version = loadedVersion
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.MatchedCount == 0 {
		profile.Version = loadedVersion
		return ErrVersionConflict
	}
	return nil
}

// DeleteByUserID は指定ユーザーのプロフィールを削除する。
func (r *MongoProfileRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID}); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
