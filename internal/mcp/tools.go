package mcp

import "github.com/mark3labs/mcp-go/mcp"

var queryToolDef = mcp.NewTool("recall_query",
	mcp.WithDescription("Answer a free-text query against the vault and capsule stores. Returns ranked results with relevance scores."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Free-text query"),
	),
	mcp.WithString("project",
		mcp.Description("Project scope; inferred from the query when omitted"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum result count"),
	),
	mcp.WithBoolean("force_specific",
		mcp.Description("Skip intent classification and treat the query as literal text"),
	),
	mcp.WithNumber("min_relevance",
		mcp.Description("Debug-only relevance floor applied after selection"),
	),
)

var categoryToolDef = mcp.NewTool("recall_category",
	mcp.WithDescription("List every record of a category, most recent first, without scoring."),
	mcp.WithString("category",
		mcp.Required(),
		mcp.Description("Category name, singular or plural"),
	),
	mcp.WithString("project",
		mcp.Description("Project scope; global store only when omitted"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum result count"),
	),
)

var byDateToolDef = mcp.NewTool("recall_bydate",
	mcp.WithDescription("List capsules inside a date window, oldest first. Bounds are RFC 3339 timestamps; either may be omitted."),
	mcp.WithString("after",
		mcp.Description("Inclusive lower bound, RFC 3339"),
	),
	mcp.WithString("before",
		mcp.Description("Inclusive upper bound, RFC 3339"),
	),
	mcp.WithString("project",
		mcp.Description("Project scope"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum result count"),
	),
)

var byTypeToolDef = mcp.NewTool("recall_bytype",
	mcp.WithDescription("List capsules of one record type, most recent first."),
	mcp.WithString("type",
		mcp.Required(),
		mcp.Description("Record type, e.g. conversation or fact"),
	),
	mcp.WithString("project",
		mcp.Description("Project scope"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum result count"),
	),
)
