// Package textutil rewrites chapter titles into filesystem-safe names.
//
// SanitizeTitle is the policy applied when sanitization is requested;
// FoldDiacritics optionally runs first so accented Latin letters survive as
// their base letters instead of becoming underscores.
package textutil
