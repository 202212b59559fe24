// Package geo provides great-circle distance calculations and a small
// static table of well-known city coordinates.
//
// Distances use the haversine formula on a spherical Earth of radius
// 6371 km. That is accurate to well under one percent for the short
// distances a hotel search deals with.
package geo
