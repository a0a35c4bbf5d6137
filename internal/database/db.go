// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// connectTimeout はMongoDBへの初回接続確認のタイムアウト。
const connectTimeout = 10 * time.Second

// Open はMongoDBクライアントを生成し、疎通確認を行う。
// mongoURIはMongoDBの接続URIを指定する（例: "mongodb://localhost:27017"）。
func Open(ctx context.Context, mongoURI string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	return client, nil
}
