package schema

// ViewsTable describes a view-tracking join table (maps and datasets share
// the same shape).
type ViewsTable struct {
	Table     string
	ID        string
	EntityID  string
	UserID    string
	IPAddress string
	CreatedAt string
}

// FavoritesTable describes a favorite join table.
type FavoritesTable struct {
	Table     string
	ID        string
	EntityID  string
	UserID    string
	CreatedAt string
}

// MapViews is the schema definition for map_views
var MapViews = ViewsTable{
	Table:     "map_views",
	ID:        "map_view_id",
	EntityID:  "map_id",
	UserID:    "user_id",
	IPAddress: "ip_address",
	CreatedAt: "created_at",
}

// DatasetViews is the schema definition for geographic_dataset_views
var DatasetViews = ViewsTable{
	Table:     "geographic_dataset_views",
	ID:        "geographic_dataset_view_id",
	EntityID:  "geographic_dataset_id",
	UserID:    "user_id",
	IPAddress: "ip_address",
	CreatedAt: "created_at",
}

// MapFavorites is the schema definition for map_favorites
var MapFavorites = FavoritesTable{
	Table:     "map_favorites",
	ID:        "map_favorite_id",
	EntityID:  "map_id",
	UserID:    "user_id",
	CreatedAt: "created_at",
}

// DatasetFavorites is the schema definition for geographic_dataset_favorites
var DatasetFavorites = FavoritesTable{
	Table:     "geographic_dataset_favorites",
	ID:        "geographic_dataset_favorite_id",
	EntityID:  "geographic_dataset_id",
	UserID:    "user_id",
	CreatedAt: "created_at",
}
