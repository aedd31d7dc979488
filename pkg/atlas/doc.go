// Package atlas defines the data model of the startup ecosystem atlas.
//
// # Core Types
//
//   - [Project]: one organization record as delivered by a record source
//   - [Category]: a named, colored container that projects are grouped into
//   - [Tag]: filter labels carried by a project ("official", "free", "paid")
//
// # Categories
//
// Categories are an open registry keyed by string id. A fixed set of base
// categories ([BaseCategories]) always exists; any other category id found in
// the records becomes an ad hoc category whose display name is derived from
// the id and whose color is picked from [Palette] by [HashString]:
//
//	cats := atlas.ResolveCategories(projects, atlas.BaseCategories())
//
// The resolved set is rebuilt from every data snapshot and never mutated in
// place.
//
// # Helpers
//
// [GroupByCategory], [Dedupe], [Search], [FilterByTags] and [Initials] cover
// the record-level operations used by the layout engine, the server and the
// terminal explorer.
package atlas
