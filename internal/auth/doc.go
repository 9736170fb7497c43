// Package auth provides password hashing for the admin credential.
//
// Passwords are hashed with Argon2id and stored in PHC string format,
// so the configured admin hash can be generated with any standard
// Argon2 tooling. Verification is constant-time.
package auth
