// Package geometry places an object image onto a background and derives the
// detector label from the placement.
//
// Pixel geometry uses the image package convention: (0,0) is the top-left
// corner, rectangles are half-open [Min, Max). Labels use the normalized,
// center-anchored form expected by darknet-style detectors:
//
//	cx = (2*x + objW) / (2*bgW)    cy = (2*y + objH) / (2*bgH)
//	w  = objW / bgW                h  = objH / bgH
//
// Placement always keeps the object fully inside the background, so every
// field of a Box lies in [0,1].
package geometry
