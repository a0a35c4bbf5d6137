package model

import "time"

// Post は投稿を表すアグリゲートルート。
// likesとcommentsはPostが排他的に所有し、他のエンティティから参照されない。
// Versionは楽観的同時実行制御のための単調増加カウンタで、
// 条件付き更新（compare-and-swap）のキーとして使用する。
type Post struct {
	ID        string    `bson:"_id" json:"id"`
	AuthorID  string    `bson:"author_id" json:"author_id"`
	Text      string    `bson:"text" json:"text"`
	Name      string    `bson:"name" json:"name"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	Likes     []Like    `bson:"likes" json:"likes"`
	Comments  []Comment `bson:"comments" json:"comments"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	Version   int64     `bson:"version" json:"-"`
}

// Like はいいねを表す。メンバーシップのみの意味を持ち、
// 同一LikerIDのエントリは1件までという不変条件をPostが維持する。
type Like struct {
	LikerID string `bson:"liker_id" json:"liker_id"`
}

// Comment は投稿へのコメントを表す。
// IDは安定した一意識別子で、削除時はこのIDのみで対象を特定する。
type Comment struct {
	ID        string    `bson:"id" json:"id"`
	AuthorID  string    `bson:"author_id" json:"author_id"`
	Text      string    `bson:"text" json:"text"`
	Name      string    `bson:"name" json:"name"`
	Avatar    string    `bson:"avatar" json:"avatar"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// HasLikeBy は指定ユーザーのいいねが存在するかを返す。
func (p *Post) HasLikeBy(likerID string) bool {
	for _, l := range p.Likes {
		if l.LikerID == likerID {
			return true
		}
	}
	return false
}

// FindComment は指定IDのコメントを返す。見つからない場合はnilを返す。
func (p *Post) FindComment(commentID string) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}
