package mongo

import (
	"context"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowRepository keeps one document per follower -> followee edge under a
// unique index. Both the followers and the following view are read from it.
type FollowRepository struct {
	coll   *mongo.Collection
	events *eventWriter
}

func (r *FollowRepository) Toggle(ctx context.Context, followerID, followeeID string) (bool, error) {
	follower, err := parseID(followerID, "user")
	if err != nil {
		return false, err
	}
	followee, err := parseID(followeeID, "user")
	if err != nil {
		return false, err
	}
	edge := bson.M{"followerId": follower, "followeeId": followee}

	res, err := r.coll.DeleteOne(ctx, edge)
	if err != nil {
		return false, translate(err, "follow")
	}
	following := res.DeletedCount == 0
	if following {
		_, err := r.coll.InsertOne(ctx, followDoc{
			ID:         primitive.NewObjectID(),
			FollowerID: follower,
			FolloweeID: followee,
			CreatedAt:  now(),
		})
		// A concurrent toggle inserted the same edge; the user follows.
		if err != nil && !mongo.IsDuplicateKeyError(err) {
			return false, translate(err, "follow")
		}
	}

	event := model.EventUserUnfollow
	if following {
		event = model.EventUserFollow
	}
	r.events.append(ctx, event, followeeID, map[string]any{"follower": followerID, "followee": followeeID})
	return following, nil
}

func (r *FollowRepository) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	follower, err1 := primitive.ObjectIDFromHex(followerID)
	followee, err2 := primitive.ObjectIDFromHex(followeeID)
	if err1 != nil || err2 != nil {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"followerId": follower, "followeeId": followee}, options.Count().SetLimit(1))
	if err != nil {
		return false, translate(err, "follow")
	}
	return n > 0, nil
}

func (r *FollowRepository) Followers(ctx context.Context, userID string) ([]string, error) {
	return r.edges(ctx, "followeeId", "followerId", userID)
}

func (r *FollowRepository) Following(ctx context.Context, userID string) ([]string, error) {
	return r.edges(ctx, "followerId", "followeeId", userID)
}

func (r *FollowRepository) edges(ctx context.Context, match, pick, userID string) ([]string, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []string{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{match: uid}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, translate(err, "follows")
	}
	var docs []followDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "follows")
	}
	ids := make([]string, len(docs))
	for i, d := range docs {
		if pick == "followerId" {
			ids[i] = d.FollowerID.Hex()
		} else {
			ids[i] = d.FolloweeID.Hex()
		}
	}
	return ids, nil
}
