package ephemeris

// nutationTerm is one row of the nutation-in-longitude series. s0 and s1
// are the sine coefficient and its drift per century in 0.0001 arcsecond.
type nutationTerm struct {
	d, m, mp, f, om int8
	s0, s1          float64
}

// Meeus table 22.A, longitude columns
var nutationTerms = [...]nutationTerm{
	{0, 0, 0, 0, 1, -171996, -174.2},
	{-2, 0, 0, 2, 2, -13187, -1.6},
	{0, 0, 0, 2, 2, -2274, -0.2},
	{0, 0, 0, 0, 2, 2062, 0.2},
	{0, 1, 0, 0, 0, 1426, -3.4},
	{0, 0, 1, 0, 0, 712, 0.1},
	{-2, 1, 0, 2, 2, -517, 1.2},
	{0, 0, 0, 2, 1, -386, -0.4},
	{-2, -1, 0, 2, 2, 217, -0.5},
	{-2, 0, 0, 2, 1, 129, 0.1},
	{0, 0, 1, 0, 1, 63, 0.1},
	{0, 0, -1, 0, 1, -58, -0.1},
	{0, 2, 0, 0, 0, 17, -0.1},
	{-2, 2, 0, 2, 2, -16, 0.1},
	{0, 0, 1, 2, 2, -301, 0},
	{-2, 0, 1, 0, 0, -158, 0},
	{0, 0, -1, 2, 2, 123, 0},
	{2, 0, 0, 0, 0, 63, 0},
	{2, 0, -1, 2, 2, -59, 0},
	{0, 0, 1, 2, 1, -51, 0},
	{-2, 0, 2, 0, 0, 48, 0},
	{0, 0, -2, 2, 1, 46, 0},
	{2, 0, 0, 2, 2, -38, 0},
	{0, 0, 2, 2, 2, -31, 0},
	{0, 0, 2, 0, 0, 29, 0},
	{-2, 0, 1, 2, 2, 29, 0},
	{0, 0, 0, 2, 0, 26, 0},
	{-2, 0, 0, 2, 0, -22, 0},
	{0, 0, -1, 2, 1, 21, 0},
	{2, 0, -1, 0, 1, 16, 0},
	{0, 1, 0, 0, 1, -15, 0},
	{-2, 0, 1, 0, 1, -13, 0},
	{0, -1, 0, 0, 1, -12, 0},
	{0, 0, 2, -2, 0, 11, 0},
	{2, 0, -1, 2, 1, -10, 0},
	{2, 0, 1, 2, 2, -8, 0},
	{0, 1, 0, 2, 2, 7, 0},
	{-2, 1, 1, 0, 0, -7, 0},
	{0, -1, 0, 2, 2, -7, 0},
	{2, 0, 0, 2, 1, -7, 0},
	{2, 0, 1, 0, 0, 6, 0},
	{-2, 0, 2, 2, 2, 6, 0},
	{-2, 0, 1, 2, 1, 6, 0},
	{2, 0, -2, 0, 1, -6, 0},
	{2, 0, 0, 0, 1, -6, 0},
	{0, -1, 1, 0, 0, 5, 0},
	{-2, -1, 0, 2, 1, -5, 0},
	{-2, 0, 0, 0, 1, -5, 0},
	{0, 0, 2, 2, 1, -5, 0},
	{-2, 0, 2, 0, 1, 4, 0},
	{-2, 1, 0, 2, 1, 4, 0},
	{0, 0, 1, -2, 0, 4, 0},
	{-1, 0, 1, 0, 0, -4, 0},
	{-2, 1, 0, 0, 0, -4, 0},
	{1, 0, 0, 0, 0, -4, 0},
	{0, 0, 1, 2, 0, 3, 0},
	{0, 0, -2, 2, 2, -3, 0},
	{-1, -1, 1, 0, 0, -3, 0},
	{0, 1, 1, 0, 0, -3, 0},
	{0, -1, 1, 2, 2, -3, 0},
	{2, -1, -1, 2, 2, -3, 0},
	{0, 0, 3, 2, 2, -3, 0},
	{2, -1, 0, 2, 2, -3, 0},
}
