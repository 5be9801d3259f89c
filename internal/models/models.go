package models

import "time"

// User is an opaque identity with no credentials behind it. ExternalUserID
// is the value handed back to the client on its first post; the client
// stores it and replays it on later requests. There is no verification, so
// whoever presents the id owns the posts.
type User struct {
	ID             string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	ExternalUserID string    `gorm:"uniqueIndex;not null;size:36" bson:"external_user_id" json:"externalUserId"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
}

// Post is a unit of text content a user wants to be question-answerable.
// Posts are immutable after creation; there is no edit operation.
type Post struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Title     string    `gorm:"not null" bson:"title" json:"title"`
	Content   string    `gorm:"not null" bson:"content" json:"content"`
	OwnerID   string    `gorm:"not null;index;size:36" bson:"owner_id" json:"ownerId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// QAPair is one question-and-answer record tied to a Post. Pairs are only
// created through the answer-generation flow and never updated.
type QAPair struct {
	ID        string    `gorm:"primaryKey;size:36" bson:"_id" json:"id"`
	Question  string    `gorm:"not null" bson:"question" json:"question"`
	Answer    string    `gorm:"not null" bson:"answer" json:"answer"`
	PostID    string    `gorm:"not null;index;size:36" bson:"post_id" json:"postId"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// DefaultTitle is used when a post is created without one.
const DefaultTitle = "Untitled Post"
