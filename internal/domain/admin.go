package domain

// Admin is an administrative user of the control API. Password holds the
// argon2id PHC-format hash, never cleartext.
type Admin struct {
	ID       int64  `db:"id"       json:"id"`
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"-"`
}
