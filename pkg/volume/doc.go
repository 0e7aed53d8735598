// Package volume tracks mounted volumes and resolves paths inside them.
//
// A Manager keeps the volumes in display order. Volumes of the same Type are
// grouped, and the groups follow the order of the Type constants, so the
// Downloads volume always comes first and newly attached removable media is
// appended after existing removable volumes.
//
// Every change is announced as an observable.Permuted event carrying a
// snapshot of the new list. Info values are never modified after they are
// published; SetError replaces the Info with an updated copy.
//
// # Mount State
//
// A volume stays in the list when it fails, with Info.Error describing the
// failure. Consumers treat such a volume as not mounted.
//
// # Removable Media
//
// Watcher mounts every directory that appears below a media root and
// unmounts it again when the directory disappears.
package volume
