package mongo

import (
	"context"
	"strings"

	"Social_Hub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	at := now()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Email:     strings.ToLower(u.Email),
		Password:  u.Password,
		Name:      u.Name,
		Image:     u.Image,
		GoogleID:  u.GoogleID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "user")
	}
	*u = doc.model()
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err, "user")
	}
	u := doc.model()
	return &u, nil
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *UserRepository) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	if patch.Empty() {
		return r.FindByID(ctx, id)
	}
	oid, err := parseID(id, "user")
	if err != nil {
		return nil, err
	}
	set := bson.M{"updatedAt": now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Password != nil {
		set["password"] = *patch.Password
	}
	if patch.GoogleID != nil {
		set["googleId"] = *patch.GoogleID
	}
	var doc userDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&doc)
	if err != nil {
		return nil, translate(err, "user")
	}
	u := doc.model()
	return &u, nil
}

func (r *UserRepository) SearchByName(ctx context.Context, q string, limit int) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}}).SetLimit(int64(limit))
	return r.find(ctx, bson.M{"name": containsRegex(q)}, opts)
}

// Sample picks up to n random users with $sample.
func (r *UserRepository) Sample(ctx context.Context, excludeID string, n int) ([]model.User, error) {
	match := bson.M{}
	if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
		match["_id"] = bson.M{"$ne": oid}
	}
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sample", Value: bson.M{"size": n}}},
	})
	if err != nil {
		return nil, translate(err, "users")
	}
	return decodeUsers(ctx, cur)
}

func (r *UserRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, translate(err, "users")
	}
	return decodeUsers(ctx, cur)
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]model.User, error) {
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, translate(err, "users")
	}
	out := make([]model.User, len(docs))
	for i := range docs {
		out[i] = docs[i].model()
	}
	return out, nil
}
