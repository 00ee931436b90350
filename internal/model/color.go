package model

// ColorID identifies a colour in the catalog
type ColorID int

// Color is a named colour with its hex value
type Color struct {
	ID   ColorID
	Name string
	Hex  string
}
