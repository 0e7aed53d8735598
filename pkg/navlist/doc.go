// Package navlist implements the Files app navigation list.
//
// The navigation list shows mounted volumes followed by the user's shortcuts
// (pinned folders) as one indexable list:
//
//	0  Downloads        volume
//	1  USB Drive        volume
//	2  /dl/Photos       shortcut
//	3  /media/usb/Work  shortcut
//
// # Updates
//
// The Model listens to the volume source and the shortcut source. A volume
// change applies the source permutation to the volume items. Either change
// rebuilds the shortcut items by merging the sorted shortcut list with the
// previous shortcut items, because a shortcut is only shown while the volume
// containing it is mounted and volume state can change without any shortcut
// event.
//
// Every update publishes one observable.Permuted event covering the whole
// combined list. Items that only move keep their identity.
//
// # Resolution
//
// Each new item resolves its file system entry in the background. An item
// never has more than one resolution in flight; concurrent Resolve calls wait
// for the running one and share its result. When a shortcut's folder no longer
// exists, the shortcut is removed from the shortcut source, which in turn
// removes the item through a regular shortcut update.
//
// # Event Ordering
//
// Source events are processed one at a time in delivery order. Events
// published while an update is running, including events caused by listeners
// of the model itself, are queued and processed afterwards.
package navlist
