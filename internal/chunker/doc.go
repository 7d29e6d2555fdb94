// Package chunker post-processes the chunks a parser adapter emits: it
// estimates token counts against the embedder's practical input limit and
// splits any chunk that exceeds it into smaller, still symbol-attributed
// pieces before they reach the embedder.
//
// Most chunks (a typical function or type declaration) never need
// splitting; this package exists for the minority that do — a very long
// function, a large generated table.
package chunker
