// Package textfmt reads and writes the two Praat TextGrid text formats.
//
// Both start with the same two header lines. The long format labels every
// value and marks blocks:
//
//	File type = "ooTextFile"
//	Object class = "TextGrid"
//
//	xmin = 0
//	xmax = 2
//	tiers? <exists>
//	size = 1
//	item []:
//	    item [1]:
//	        class = "IntervalTier"
//	        name = "words"
//	        ...
//
// The short format carries the same values in the same order, one bare value
// per line. Strings are double-quoted with embedded quotes doubled.
package textfmt
