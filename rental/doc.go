// Package rental is the persistence layer of the EZDrive car-rental app. It
// owns the SQLite schema for users, cars and bookings, the record lifecycle for
// each of them and the join query behind a user's booking history.
//
// A Store wraps a single long-lived connection pool. Every operation borrows a
// connection for the duration of the call and returns it on every exit path;
// callers never see a connection.
package rental
