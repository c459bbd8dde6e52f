package sqlinline

const QCreateAPIKeysTable = `--sql c2e5d976-998e-4eda-b533-4073097a82dd
create table if not exists api_keys (
  id uuid primary key default gen_random_uuid(),
  device_id text not null,
  name text,
  key_prefix text not null,
  key_hash text not null unique,
  enabled boolean not null default true,
  rate_limit_per_minute int not null default 60,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
create index if not exists api_keys_device_id_idx on api_keys(device_id);
create index if not exists api_keys_prefix_idx on api_keys(key_prefix);
`

const QInsertAPIKey = `--sql 0f2c5286-9859-468d-aae1-7f3a940e4822
insert into api_keys(device_id, name, key_prefix, key_hash, rate_limit_per_minute)
values ($1::text, nullif($2::text, ''), $3::text, $4::text, $5::int)
returning id::text, key_prefix, created_at;
`

const QSelectAPIKeyByHash = `--sql d13d5216-b611-4672-b9f8-a1e7867e17d2
select id::text, device_id, coalesce(name, ''), key_prefix, enabled, rate_limit_per_minute, created_at
from api_keys
where key_hash = $1::text
limit 1;
`

const QListAPIKeysByDevice = `--sql ee9dc41a-6e99-4f34-9e43-cd57dd18bbba
select id::text, device_id, coalesce(name, ''), key_prefix, enabled, rate_limit_per_minute, created_at
from api_keys
where device_id = $1::text
order by created_at desc
limit $2::int;
`

const QDisableAPIKeyByPrefix = `--sql 10bbd377-f91a-4384-b8ff-027ce2167bed
update api_keys
set enabled = false, updated_at = now()
where key_prefix = $1::text and enabled;
`

const QUpdateAPIKeyRateLimit = `--sql 22b33286-fabe-4d7d-aeb9-b15bd69a0edd
update api_keys
set rate_limit_per_minute = $2::int, updated_at = now()
where key_prefix = $1::text;
`
