package service

import "go.mongodb.org/mongo-driver/bson/primitive"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID primitive.ObjectID
	Admin  bool
}

func (a Actor) canSee(owner primitive.ObjectID) bool {
	return a.Admin || a.UserID == owner
}
