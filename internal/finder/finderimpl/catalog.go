package finderimpl

import (
	"sort"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

// seedCatalog is the curated starting point per category. The counts are
// snapshots; Discover refreshes them through the acquisition chain before
// filtering.
var seedCatalog = map[string][]domain.Account{
	"photography": {
		{Username: "natgeo", FullName: "National Geographic", FollowersCount: 235000000},
		{Username: "earthpix", FullName: "Earth Pictures", FollowersCount: 8900000},
		{Username: "bbcearth", FullName: "BBC Earth", FollowersCount: 4200000},
		{Username: "natgeotravel", FullName: "National Geographic Travel", FollowersCount: 8900000},
	},
	"design": {
		{Username: "design", FullName: "Design", FollowersCount: 1800000},
		{Username: "dezeen", FullName: "Dezeen", FollowersCount: 2300000},
		{Username: "architecturaldigest", FullName: "Architectural Digest", FollowersCount: 3800000},
		{Username: "designmilk", FullName: "Design Milk", FollowersCount: 1200000},
	},
	"interior": {
		{Username: "luxuryhome", FullName: "Luxury Home", FollowersCount: 2800000},
		{Username: "homepolish", FullName: "HomePolish", FollowersCount: 1500000},
		{Username: "interior", FullName: "Interior Design", FollowersCount: 3200000},
	},
	"food": {
		{Username: "foodnetwork", FullName: "Food Network", FollowersCount: 8900000},
		{Username: "tastemade", FullName: "Tastemade", FollowersCount: 5600000},
		{Username: "bonappetitmag", FullName: "Bon Appétit", FollowersCount: 4200000},
	},
	"art": {
		{Username: "metmuseum", FullName: "The Metropolitan Museum", FollowersCount: 1800000},
		{Username: "moma", FullName: "The Museum of Modern Art", FollowersCount: 1200000},
		{Username: "artgallery", FullName: "Art Gallery", FollowersCount: 890000},
	},
}

// Categories lists the known catalog categories in stable order.
func Categories() []string {
	names := make([]string, 0, len(seedCatalog))
	for name := range seedCatalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
