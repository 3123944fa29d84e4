package voxel

// faceOffsets are the 6 face neighbors of a voxel.
var faceOffsets = [6]Coord{
	{I: -1}, {I: 1},
	{J: -1}, {J: 1},
	{K: -1}, {K: 1},
}

// Components finds the 6-connected regions of pore voxels.
// Each component is a slice of voxel indices in BFS discovery order, and
// components are ordered by their first voxel in row-major order.
//
// Time:   O(D·H·W).
// Memory: O(D·H·W) for visited flags and output.
func Components(m *Mask) [][]int {
	seen := make([]bool, len(m.Data))
	var comps [][]int

	for i0, pore := range m.Data {
		if !pore || seen[i0] {
			continue
		}
		queue := []int{i0}
		seen[i0] = true
		for qi := 0; qi < len(queue); qi++ {
			u := m.Coord(queue[qi])
			for _, d := range faceOffsets {
				v := Coord{I: u.I + d.I, J: u.J + d.J, K: u.K + d.K}
				if !m.InBounds(v) {
					continue
				}
				vi := m.Index(v)
				if m.Data[vi] && !seen[vi] {
					seen[vi] = true
					queue = append(queue, vi)
				}
			}
		}
		comps = append(comps, queue)
	}
	return comps
}
