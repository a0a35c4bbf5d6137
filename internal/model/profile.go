package model

import "time"

// Profile はユーザーの開発者プロフィールを表す。
// UserIDごとに最大1件。experienceとeducationはProfileが排他的に所有する。
// Versionは楽観的同時実行制御のための単調増加カウンタ。
type Profile struct {
	ID             string       `bson:"_id" json:"id"`
	UserID         string       `bson:"user_id" json:"user_id"`
	Company        string       `bson:"company,omitempty" json:"company,omitempty"`
	Website        string       `bson:"website,omitempty" json:"website,omitempty"`
	Location       string       `bson:"location,omitempty" json:"location,omitempty"`
	Status         string       `bson:"status" json:"status"`
	Skills         []string     `bson:"skills" json:"skills"`
	Bio            string       `bson:"bio,omitempty" json:"bio,omitempty"`
	GithubUsername string       `bson:"github_username,omitempty" json:"github_username,omitempty"`
	Experience     []Experience `bson:"experience" json:"experience"`
	Education      []Education  `bson:"education" json:"education"`
	CreatedAt      time.Time    `bson:"created_at" json:"created_at"`
	Version        int64        `bson:"version" json:"-"`
}

// Experience は職歴エントリを表す。IDで個別に削除可能。
type Experience struct {
	ID          string     `bson:"id" json:"id"`
	Title       string     `bson:"title" json:"title"`
	Company     string     `bson:"company" json:"company"`
	Location    string     `bson:"location,omitempty" json:"location,omitempty"`
	From        time.Time  `bson:"from" json:"from"`
	To          *time.Time `bson:"to,omitempty" json:"to,omitempty"`
	Current     bool       `bson:"current" json:"current"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
}

// Education は学歴エントリを表す。IDで個別に削除可能。
type Education struct {
	ID           string     `bson:"id" json:"id"`
	School       string     `bson:"school" json:"school"`
	Degree       string     `bson:"degree" json:"degree"`
	FieldOfStudy string     `bson:"field_of_study" json:"field_of_study"`
	From         time.Time  `bson:"from" json:"from"`
	To           *time.Time `bson:"to,omitempty" json:"to,omitempty"`
	Current      bool       `bson:"current" json:"current"`
	Description  string     `bson:"description,omitempty" json:"description,omitempty"`
}
