package mongo

import (
	"time"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Name      string             `bson:"name"`
	Image     string             `bson:"image"`
	GoogleID  *string            `bson:"googleId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDoc) model() model.User {
	return model.User{
		ID:        d.ID.Hex(),
		Email:     d.Email,
		Password:  d.Password,
		Name:      d.Name,
		Image:     d.Image,
		GoogleID:  d.GoogleID,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type communityDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Image       string               `bson:"image"`
	CreatorID   primitive.ObjectID   `bson:"creatorId"`
	Members     []primitive.ObjectID `bson:"members"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (d *communityDoc) model() model.Community {
	return model.Community{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Image:       d.Image,
		CreatorID:   d.CreatorID.Hex(),
		Members:     hexes(d.Members),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type postDoc struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Image       string               `bson:"image"`
	UserID      primitive.ObjectID   `bson:"userId"`
	CommunityID *primitive.ObjectID  `bson:"communityId,omitempty"`
	Tags        []string             `bson:"tags"`
	Likes       []primitive.ObjectID `bson:"likes"`
	Dislikes    []primitive.ObjectID `bson:"dislikes"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

func (d *postDoc) model() model.Post {
	p := model.Post{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Image:       d.Image,
		UserID:      d.UserID.Hex(),
		Tags:        d.Tags,
		Likes:       hexes(d.Likes),
		Dislikes:    hexes(d.Dislikes),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if d.CommunityID != nil {
		id := d.CommunityID.Hex()
		p.CommunityID = &id
	}
	return p
}

type commentDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	PostID    primitive.ObjectID `bson:"postId"`
	UserID    primitive.ObjectID `bson:"userId"`
	Content   string             `bson:"content"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *commentDoc) model() model.Comment {
	return model.Comment{
		ID:        d.ID.Hex(),
		PostID:    d.PostID.Hex(),
		UserID:    d.UserID.Hex(),
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type followDoc struct {
	ID         primitive.ObjectID `bson:"_id"`
	FollowerID primitive.ObjectID `bson:"followerId"`
	FolloweeID primitive.ObjectID `bson:"followeeId"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

type outboxDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	EventType string             `bson:"eventType"`
	Key       string             `bson:"key"`
	Payload   string             `bson:"payload"`
	Status    int8               `bson:"status"`
	Retry     int                `bson:"retry"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func toOutboxDoc(e *model.OutboxEvent) outboxDoc {
	id, err := primitive.ObjectIDFromHex(e.ID)
	if err != nil {
		id = primitive.NewObjectID()
	}
	return outboxDoc{
		ID:        id,
		EventType: e.EventType,
		Key:       e.Key,
		Payload:   e.Payload,
		Status:    e.Status,
		Retry:     e.Retry,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func (d *outboxDoc) model() model.OutboxEvent {
	return model.OutboxEvent{
		ID:        d.ID.Hex(),
		EventType: d.EventType,
		Key:       d.Key,
		Payload:   d.Payload,
		Status:    d.Status,
		Retry:     d.Retry,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
