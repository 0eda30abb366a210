// Package extract turns fetched wiki pages into structured content.
// The extractor is selector-driven: it strips navigation chrome, finds
// the article body among a prioritized list of content containers, and
// pulls out the title, infobox, categories, and outbound links.
package extract
