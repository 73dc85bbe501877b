package mysql

// lodgingCols is the column list every lodging read scans, in scanLodging order.
const lodgingCols = `
  l.id, l.name, l.address, l.phone, l.capacity, l.vacancies, l.price_per_night,
  l.description, l.facilities, l.image_url, l.lat, l.lon, l.is_published, l.last_updated`

const getLodgingSQL = `SELECT` + lodgingCols + `
FROM lodgings l
WHERE l.id = ?
`

// listLodgingsSQL takes an optional WHERE and LIMIT appended by the repo.
const listLodgingsSQL = `SELECT` + lodgingCols + `
FROM lodgings l
`

const lodgingsForUserSQL = `SELECT` + lodgingCols + `
FROM lodgings l
JOIN owner_lodgings o ON o.lodging_id = l.id
WHERE o.owner_id = ?
ORDER BY l.name, l.id
`

const isOwnerSQL = `
SELECT EXISTS(SELECT 1 FROM owner_lodgings WHERE owner_id = ? AND lodging_id = ?)
`

// -----------------------------------------------------------------------------
// WRITES
// -----------------------------------------------------------------------------

// The range guard repeats the CHECK constraint so an out-of-range value is a
// no-op instead of a driver error; the repo re-reads the row to tell the two apart.
const updateVacancySQL = `
UPDATE lodgings
SET vacancies = ?, last_updated = ?
WHERE id = ? AND ? BETWEEN 0 AND capacity
`

// No range guard here: the CHECK constraint rejects bad values and its
// message is surfaced to the editor as-is.
const updateLodgingDetailsSQL = `
UPDATE lodgings
SET vacancies       = ?,
    price_per_night = ?,
    description     = ?,
    facilities      = ?,
    image_url       = ?,
    last_updated    = ?
WHERE id = ?
`

const upsertLodgingSQL = `
INSERT INTO lodgings
  (id, name, address, phone, capacity, vacancies, price_per_night,
   description, facilities, image_url, lat, lon, is_published, last_updated)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name            = VALUES(name),
  address         = VALUES(address),
  phone           = VALUES(phone),
  capacity        = VALUES(capacity),
  vacancies       = VALUES(vacancies),
  price_per_night = VALUES(price_per_night),
  description     = VALUES(description),
  facilities      = VALUES(facilities),
  image_url       = VALUES(image_url),
  lat             = VALUES(lat),
  lon             = VALUES(lon),
  is_published    = VALUES(is_published),
  last_updated    = COALESCE(VALUES(last_updated), lodgings.last_updated)
`

const upsertServiceSQL = `
INSERT INTO services
  (id, name, category, address, phone, description, lat, lon)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name        = VALUES(name),
  category    = VALUES(category),
  address     = VALUES(address),
  phone       = VALUES(phone),
  description = VALUES(description),
  lat         = VALUES(lat),
  lon         = VALUES(lon)
`

// COALESCE keeps the stored hash when the seed row carries no password.
const upsertProfileSQL = `
INSERT INTO profiles
  (id, email, full_name, role, password_hash)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  email         = VALUES(email),
  full_name     = VALUES(full_name),
  role          = VALUES(role),
  password_hash = COALESCE(VALUES(password_hash), profiles.password_hash)
`

const assignOwnerSQL = `
INSERT IGNORE INTO owner_lodgings (owner_id, lodging_id)
VALUES (?, ?)
`

// -----------------------------------------------------------------------------
// DIRECTORY
// -----------------------------------------------------------------------------

const listServicesSQL = `
SELECT id, name, category, address, phone, description, lat, lon
FROM services
ORDER BY category, name
`

const getProfileSQL = `
SELECT id, email, full_name, role
FROM profiles
WHERE id = ?
`

const findCredentialsSQL = `
SELECT id, password_hash
FROM profiles
WHERE email = ?
`
