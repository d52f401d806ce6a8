package mongo

import "go.mongodb.org/mongo-driver/v2/bson"

// ExistsFalse is a reusable shortcut for {$exists:false}.
var ExistsFalse = bson.M{"$exists": false}

// ownedBy scopes a filter to one user's documents.
func ownedBy(userID string, id bson.ObjectID) bson.M {
	return bson.M{"_id": id, "user_id": userID}
}
