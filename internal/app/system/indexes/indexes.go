// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	apikeystore "github.com/Sherifrax/speakup-sub001/internal/app/store/apikeys"
	lookupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/lookups"
	speakupstore "github.com/Sherifrax/speakup-sub001/internal/app/store/speakup"
	"github.com/Sherifrax/speakup-sub001/internal/app/store/usage"
	userstore "github.com/Sherifrax/speakup-sub001/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

/*
EnsureAll is called at startup. Each store's EnsureIndexes is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := userstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := apikeystore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "api_keys: "+err.Error())
	}
	if err := speakupstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "speakup_entries: "+err.Error())
	}
	if err := lookupstore.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "lookups: "+err.Error())
	}
	if err := usage.New(db).EnsureIndexes(ctx); err != nil {
		problems = append(problems, "usage_stats: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
