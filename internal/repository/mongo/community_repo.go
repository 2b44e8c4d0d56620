package mongo

import (
	"context"
	"errors"
	"fmt"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// toggleAttempts bounds the retries of a toggle whose guarded update lost a
// race with a concurrent toggle by the same user.
const toggleAttempts = 3

type CommunityRepository struct {
	coll   *mongo.Collection
	events *eventWriter
}

func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	creator, err := parseID(c.CreatorID, "user")
	if err != nil {
		return err
	}
	at := now()
	doc := communityDoc{
		ID:          primitive.NewObjectID(),
		Name:        c.Name,
		Description: c.Description,
		Image:       c.Image,
		CreatorID:   creator,
		Members:     []primitive.ObjectID{creator},
		CreatedAt:   at,
		UpdatedAt:   at,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "community")
	}
	*c = doc.model()
	return nil
}

func (r *CommunityRepository) FindByID(ctx context.Context, id string) (*model.Community, error) {
	oid, err := parseID(id, "community")
	if err != nil {
		return nil, err
	}
	var doc communityDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, "community")
	}
	c := doc.model()
	return &c, nil
}

func (r *CommunityRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Community, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find().SetProjection(bson.M{"members": 0}))
}

func (r *CommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *CommunityRepository) Search(ctx context.Context, q string, limit int) ([]model.Community, error) {
	re := containsRegex(q)
	filter := bson.M{"$or": bson.A{bson.M{"name": re}, bson.M{"description": re}}}
	return r.find(ctx, filter, byName(limit))
}

func (r *CommunityRepository) SearchByName(ctx context.Context, q string, limit int) ([]model.Community, error) {
	return r.find(ctx, bson.M{"name": containsRegex(q)}, byName(limit))
}

func byName(limit int) *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(int64(limit))
}

func (r *CommunityRepository) Sample(ctx context.Context, n int) ([]model.Community, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
		{{Key: "$project", Value: bson.M{"members": 0}}},
	})
	if err != nil {
		return nil, translate(err, "communities")
	}
	return decodeCommunities(ctx, cur)
}

func (r *CommunityRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]model.Community, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err, "communities")
	}
	return decodeCommunities(ctx, cur)
}

func decodeCommunities(ctx context.Context, cur *mongo.Cursor) ([]model.Community, error) {
	var docs []communityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "communities")
	}
	out := make([]model.Community, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}

// ToggleMember flips membership with single-document updates. The leave
// update only matches when the user is a member and the join update only
// when they are not, so each applied update is a real transition.
func (r *CommunityRepository) ToggleMember(ctx context.Context, communityID, userID string) (bool, []string, error) {
	cid, err := parseID(communityID, "community")
	if err != nil {
		return false, nil, err
	}
	uid, err := parseID(userID, "user")
	if err != nil {
		return false, nil, err
	}
	after := options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"members": 1})

	for i := 0; i < toggleAttempts; i++ {
		var doc communityDoc
		err := r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": cid, "members": uid},
			bson.M{"$pull": bson.M{"members": uid}, "$set": bson.M{"updatedAt": now()}},
			after).Decode(&doc)
		if err == nil {
			return r.toggled(ctx, communityID, userID, false, doc.Members)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil, translate(err, "community")
		}

		err = r.coll.FindOneAndUpdate(ctx,
			bson.M{"_id": cid, "members": bson.M{"$ne": uid}},
			bson.M{"$push": bson.M{"members": uid}, "$set": bson.M{"updatedAt": now()}},
			after).Decode(&doc)
		if err == nil {
			return r.toggled(ctx, communityID, userID, true, doc.Members)
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil, translate(err, "community")
		}

		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": cid})
		if err != nil {
			return false, nil, translate(err, "community")
		}
		if n == 0 {
			return false, nil, translate(mongo.ErrNoDocuments, "community")
		}
	}
	return false, nil, fmt.Errorf("toggle membership of %s: too much contention", communityID)
}

func (r *CommunityRepository) toggled(ctx context.Context, communityID, userID string, joined bool, members []primitive.ObjectID) (bool, []string, error) {
	event := model.EventCommunityLeave
	if joined {
		event = model.EventCommunityJoin
	}
	r.events.append(ctx, event, communityID, map[string]any{
		"community_id": communityID,
		"user_id":      userID,
		"members":      len(members),
	})
	return joined, hexes(members), nil
}
