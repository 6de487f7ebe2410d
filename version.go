package regen

// Version is the current regen release.
const Version = "0.3.0"
