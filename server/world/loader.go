package world

// Loader is supplied by the application to fill a Column for a world-space
// column (ax, az). The same signature serves both base-chunk columns and
// frontier-tile columns; a world may use one Loader for both or pass a
// distinct one via Config.FrontierLoader. The callback must only use
// ColumnBuffer.Push and ColumnBuffer.Overwrite, and must not assume any
// state carries across calls (the ColumnBuffer passed in may be reused and
// Clear()ed between calls).
type Loader func(ax, az int32, col *ColumnBuffer)
