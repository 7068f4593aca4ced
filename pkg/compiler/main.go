// Package compiler provides the SimpleLang lexer, parser, and code generator
// that target the 8-bit accumulator machine assembly language.
//
// Pipeline: source -> Lex -> Parse -> CollectDeclarations -> Generate -> assembly text
package compiler
