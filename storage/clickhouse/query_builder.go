package clickhouse

import (
	"strconv"
	"strings"
)

// QueryBuilder assembles the listing and stats queries that can't use placeholder arguments,
// since table identifiers and LIMIT/OFFSET are not parameterizable.
type QueryBuilder struct {
	strings.Builder
}

func (builder *QueryBuilder) WriteInt(i int) {
	builder.WriteString(strconv.Itoa(i))
}

// WriteIdentifier writes a backtick-quoted identifier, escaping any backticks in it.
func (builder *QueryBuilder) WriteIdentifier(identifier string) {
	builder.WriteRune('`')
	builder.WriteString(strings.ReplaceAll(identifier, "`", "``"))
	builder.WriteRune('`')
}
