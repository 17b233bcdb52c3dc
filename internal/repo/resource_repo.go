package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// Resource access by collection name, untyped. Ownership middleware uses it to
// inspect documents without knowing each module's schema.

// FindResourceByID returns the raw document, or nil when absent.
func (s *Store) FindResourceByID(ctx context.Context, coll string, id primitive.ObjectID) (bson.M, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.resource.find",
		tracer.Tag("collection", coll))
	defer sp.Finish()

	var doc bson.M
	err := s.DB.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return doc, nil
}

// ListResources decodes every document matching filter into out, which must be
// a pointer to a slice.
func (s *Store) ListResources(ctx context.Context, coll string, filter bson.M, out interface{}) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.resource.list",
		tracer.Tag("collection", coll))
	defer sp.Finish()

	if filter == nil {
		filter = bson.M{}
	}
	cur, err := s.DB.Collection(coll).Find(ctx, filter)
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	return cur.All(ctx, out)
}

func (s *Store) InsertResource(ctx context.Context, coll string, doc interface{}) (primitive.ObjectID, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.resource.insert",
		tracer.Tag("collection", coll))
	defer sp.Finish()

	res, err := s.DB.Collection(coll).InsertOne(ctx, doc)
	if err != nil {
		sp.SetTag("error", err)
		return primitive.NilObjectID, err
	}
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid, nil
}

// UpdateResourceByID applies a $set of fields; reports whether a document matched.
func (s *Store) UpdateResourceByID(ctx context.Context, coll string, id primitive.ObjectID, fields bson.M) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.resource.update",
		tracer.Tag("collection", coll))
	defer sp.Finish()

	res, err := s.DB.Collection(coll).UpdateByID(ctx, id, bson.M{"$set": fields})
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Store) DeleteResourceByID(ctx context.Context, coll string, id primitive.ObjectID) (bool, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.resource.delete",
		tracer.Tag("collection", coll))
	defer sp.Finish()

	res, err := s.DB.Collection(coll).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		sp.SetTag("error", err)
		return false, err
	}
	return res.DeletedCount > 0, nil
}
