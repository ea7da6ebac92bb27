package repository

import (
	"errors"
	"testing"
)

func TestIsDuplicateKey(t *testing.T) {
	dup := errors.New("Error 1062 (23000): Duplicate entry 'bob' for key 'users.username'")
	if !isDuplicateKey(dup) {
		t.Error("duplicate-entry error not recognized")
	}
	if isDuplicateKey(errors.New("Error 1146: Table 'medialog.nope' doesn't exist")) {
		t.Error("unrelated error treated as duplicate key")
	}
	if isDuplicateKey(nil) {
		t.Error("nil treated as duplicate key")
	}
}

func TestIsForeignKeyViolation(t *testing.T) {
	fk := errors.New("Error 1452 (23000): Cannot add or update a child row: a foreign key constraint fails (`medialog`.`media_genres`, CONSTRAINT `fk_mg_genre` FOREIGN KEY (`genre_id`) REFERENCES `genres` (`id`))")
	if !isForeignKeyViolation(fk) {
		t.Error("foreign-key error not recognized")
	}
	if isForeignKeyViolation(errors.New("Error 1062: Duplicate entry")) {
		t.Error("duplicate key treated as foreign-key violation")
	}
	if isForeignKeyViolation(nil) {
		t.Error("nil treated as foreign-key violation")
	}
}
