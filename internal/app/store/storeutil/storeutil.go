// internal/app/store/storeutil/storeutil.go
package storeutil

import (
	"regexp"

	"github.com/Sherifrax/speakup-sub001/internal/listquery"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindOptions converts normalized pagination into mongo find options: skip,
// limit, and a single-field sort. The caller supplies the already-resolved
// bson field name; stores map wire sort keys to fields themselves so an
// unknown key can never reach the database.
func FindOptions(p listquery.Pagination, sortField string) *options.FindOptions {
	dir := 1
	if p.Descending() {
		dir = -1
	}
	return options.Find().
		SetSkip(p.Skip()).
		SetLimit(int64(p.Size)).
		SetSort(bson.D{{Key: sortField, Value: dir}})
}

// SearchRegex builds a case/diacritic-insensitive substring match for a _ci
// field: the needle is folded the same way the stored value was, and regex
// metacharacters are escaped so user input is matched literally.
func SearchRegex(needle string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text.Fold(needle))}
}
