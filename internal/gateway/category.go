package gateway

// Category is the coarse statement class used for policy decisions.
type Category string

const (
	CategoryDML Category = "DML"
	CategoryDDL Category = "DDL"
	CategoryDCL Category = "DCL"
	CategoryTCL Category = "TCL"
)

// Statement is one splittable SQL unit plus its inferred category.
type Statement struct {
	Text     string
	Category Category
	// ReturnsRows decides between Query and Exec at execution time.
	ReturnsRows bool
}

// Leading keywords are matched case-insensitively. Everything not listed
// falls through to DML, the default category.
var keywordCategories = map[string]Category{
	// schema-defining verbs
	"CREATE":   CategoryDDL,
	"ALTER":    CategoryDDL,
	"DROP":     CategoryDDL,
	"TRUNCATE": CategoryDDL,
	"RENAME":   CategoryDDL,
	"COMMENT":  CategoryDDL,

	// privilege-defining verbs
	"GRANT":  CategoryDCL,
	"REVOKE": CategoryDCL,
	"DENY":   CategoryDCL,

	// transaction-control verbs; the gateway owns transaction
	// boundaries, so these are never executable through it
	"BEGIN":     CategoryTCL,
	"START":     CategoryTCL,
	"COMMIT":    CategoryTCL,
	"ROLLBACK":  CategoryTCL,
	"SAVEPOINT": CategoryTCL,
	"RELEASE":   CategoryTCL,
	"END":       CategoryTCL,
}

var rowReturningKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"TABLE":    true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"PRAGMA":   true,
}

func categoryForKeyword(keyword string) Category {
	if category, ok := keywordCategories[keyword]; ok {
		return category
	}
	return CategoryDML
}
